package main

import (
	"fmt"
	"time"

	"github.com/pior/momento"
	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue disposable tokens",
	}

	var (
		expiresIn time.Duration
		readOnly  bool
		key       string
		keyPrefix string
		tokenID   string
	)

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Print a disposable token for the cache, or for all caches without --cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if key != "" && keyPrefix != "" {
				return fmt.Errorf("--key and --key-prefix are mutually exclusive")
			}

			selector := momento.AllCaches()
			if a.settings.Cache != "" {
				selector = momento.CacheNamed(a.settings.Cache)
			}

			role := momento.CacheReadWrite
			if readOnly {
				role = momento.CacheReadOnly
			}
			permission := momento.CachePermission{Role: role, Cache: selector}
			if key != "" {
				permission.Key = []byte(key)
			}
			if keyPrefix != "" {
				permission.KeyPrefix = []byte(keyPrefix)
			}

			client, err := a.authClient()
			if err != nil {
				return err
			}
			defer client.Close()

			scope := momento.Permissions([]momento.CachePermission{permission}, nil)
			token, err := client.GenerateDisposableToken(cmd.Context(), scope, momento.ExpiresInDuration(expiresIn), tokenID)
			if err != nil {
				return err
			}

			a.logger.Info().Str("endpoint", token.Endpoint).Time("expires_at", token.ExpiresAt).Msg("token generated")
			fmt.Fprintln(cmd.OutOrStdout(), token.AuthToken)
			return nil
		},
	}

	flags := generate.Flags()
	flags.DurationVar(&expiresIn, "expires-in", time.Hour, "validity of the token, at most one hour")
	flags.BoolVar(&readOnly, "read-only", false, "grant read access only")
	flags.StringVar(&key, "key", "", "restrict the token to one key")
	flags.StringVar(&keyPrefix, "key-prefix", "", "restrict the token to keys with this prefix")
	flags.StringVar(&tokenID, "token-id", "", "identifier reported with the calls made with the token")

	cmd.AddCommand(generate)
	return cmd
}
