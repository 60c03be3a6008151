package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"crm-mailmerge/worker"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the background workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if len(cfg.Warmer.Modules) == 0 {
			return errors.New("warmer.modules is empty, nothing to do")
		}
		d, err := cfg.ParseDurations()
		if err != nil {
			return err
		}

		// The warmer only makes sense with a cache to fill.
		cfg.Cache.Enabled = true
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		svc, err := newServices(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.close()
		if svc.catalog == nil {
			return errors.New("redis is unavailable, metadata warmer cannot run")
		}

		warmer := &worker.MetadataWarmer{
			Catalog:  svc.catalog,
			Modules:  cfg.Warmer.Modules,
			Interval: d.Warmer,
			Schedule: cfg.Warmer.Schedule,
		}
		slog.Info("starting metadata warmer", "modules", warmer.Modules, "interval", warmer.Interval, "schedule", warmer.Schedule)
		mgr := worker.NewManager(warmer)

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigc)
		go func() {
			select {
			case s := <-sigc:
				slog.Info("received signal, shutting down", "signal", s.String())
				cancel()
			case <-ctx.Done():
			}
		}()

		return mgr.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
