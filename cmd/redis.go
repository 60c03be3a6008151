package cmd

import (
	"fmt"
	"time"

	"crm-mailmerge/internal/redisclient"
	"crm-mailmerge/internal/storage"

	"github.com/spf13/cobra"
)

// redisCmd groups Redis-related subcommands.
var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis utilities",
}

// pingCmd pings the configured Redis server.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping Redis and print PONG",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		rdb, err := redisclient.Connect(cmd.Context(), cfg.Redis, 2*time.Second)
		if err != nil {
			return err
		}
		defer rdb.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "PONG (%s db=%d)\n", cfg.Redis.Addr, cfg.Redis.DB)
		return nil
	},
}

// invalidateCmd drops cached field metadata so the next compose reloads it.
var invalidateCmd = &cobra.Command{
	Use:   "invalidate <module>...",
	Short: "Drop cached field metadata of modules",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		rdb, err := redisclient.Connect(cmd.Context(), cfg.Redis, 2*time.Second)
		if err != nil {
			return err
		}
		defer rdb.Close()

		store := storage.NewRedisStore(rdb, cfg.Redis.Prefix)
		for _, m := range args {
			if err := store.Invalidate(cmd.Context(), m); err != nil {
				return fmt.Errorf("invalidate %s: %w", m, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "invalidated %s\n", m)
		}
		return nil
	},
}

func init() {
	redisCmd.AddCommand(pingCmd, invalidateCmd)
	rootCmd.AddCommand(redisCmd)
}
