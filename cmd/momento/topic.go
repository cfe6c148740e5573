package main

import (
	"errors"
	"fmt"

	"github.com/pior/momento"
	"github.com/spf13/cobra"
)

func newTopicCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topic",
		Short: "Publish to and subscribe on topics",
	}

	var resumeAt uint64
	subscribe := &cobra.Command{
		Use:   "subscribe <topic>",
		Short: "Print the messages of a topic until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := a.cacheName()
			if err != nil {
				return err
			}
			client, err := a.topicClient()
			if err != nil {
				return err
			}
			defer client.Close()

			ctx := cmd.Context()
			sub, err := client.Subscribe(ctx, cache, args[0], resumeAt)
			if err != nil {
				return err
			}
			defer sub.Close()

			for {
				item, err := sub.Item(ctx)
				if errors.Is(err, momento.ErrCancelled) {
					return nil
				}
				if err != nil {
					return err
				}

				if d := item.Discontinuity; d != nil {
					a.logger.Warn().Uint64("last", d.LastSequenceNumber).Uint64("new", d.NewSequenceNumber).Msg("messages were lost")
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), item.Value.Text())
			}
		},
	}
	subscribe.Flags().Uint64Var(&resumeAt, "resume-at", 0, "last sequence number already seen")

	publish := &cobra.Command{
		Use:   "publish <topic> <message>",
		Short: "Publish a text message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := a.cacheName()
			if err != nil {
				return err
			}
			client, err := a.topicClient()
			if err != nil {
				return err
			}
			defer client.Close()

			return client.Publish(cmd.Context(), cache, args[0], momento.TextValue(args[1]))
		},
	}

	cmd.AddCommand(publish, subscribe)
	return cmd
}
