package main

import (
	"fmt"
	"time"

	"github.com/pior/momento"
	"github.com/spf13/cobra"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Create, delete, list and flush caches",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a cache",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := a.cacheClient()
				if err != nil {
					return err
				}
				defer client.Close()

				result, err := client.CreateCache(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if result == momento.CacheAlreadyExists {
					fmt.Fprintf(cmd.OutOrStdout(), "cache %s already exists\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cache %s created\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a cache and everything in it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := a.cacheClient()
				if err != nil {
					return err
				}
				defer client.Close()
				return client.DeleteCache(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "flush <name>",
			Short: "Remove every item of a cache",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := a.cacheClient()
				if err != nil {
					return err
				}
				defer client.Close()
				return client.FlushCache(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List caches",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				client, err := a.cacheClient()
				if err != nil {
					return err
				}
				defer client.Close()

				caches, err := client.ListCaches(cmd.Context())
				if err != nil {
					return err
				}
				for _, c := range caches {
					fmt.Fprintln(cmd.OutOrStdout(), c.Name)
				}
				return nil
			},
		},
	)
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := a.cacheName()
			if err != nil {
				return err
			}
			client, err := a.cacheClient()
			if err != nil {
				return err
			}
			defer client.Close()

			item, err := client.Get(cmd.Context(), cache, args[0])
			if err != nil {
				return err
			}
			if !item.Found {
				return fmt.Errorf("key %q not found", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(item.Value))
			return nil
		},
	}
}

func newSetCmd(a *app) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := a.cacheName()
			if err != nil {
				return err
			}
			client, err := a.cacheClient()
			if err != nil {
				return err
			}
			defer client.Close()

			return client.Set(cmd.Context(), cache, momento.Item{Key: args[0], Value: []byte(args[1]), TTL: ttl})
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "item TTL, the default TTL when 0")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := a.cacheName()
			if err != nil {
				return err
			}
			client, err := a.cacheClient()
			if err != nil {
				return err
			}
			defer client.Close()

			return client.Delete(cmd.Context(), cache, args[0])
		},
	}
}
