package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appLog "untiscal/internal/log"
	"untiscal/internal/probe"
	"untiscal/internal/timetable"
	"untiscal/internal/web"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			appLog.Info("untiscal starting",
				"version", version,
				"listen", cfg.Listen,
				"timezone", cfg.Timezone,
				"endpoint", cfg.Upstream.Endpoint,
				"probe", cfg.Probe.Enabled(),
			)

			// Root context with cancellation on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			factory := web.DefaultSourceFactory(cfg, loc)
			opts := []web.Option{web.WithSourceFactory(factory)}

			if cfg.Probe.Enabled() {
				newSource := func() (*timetable.Source, error) {
					return factory(cfg.Probe.Server, cfg.Probe.School)
				}
				p, err := probe.New(cfg.Probe.Cron, probe.LoginCheck(newSource, cfg.Probe.Username, cfg.Probe.Password))
				if err != nil {
					return err
				}
				p.Start()
				defer p.Stop()
				go p.Run(context.WithoutCancel(ctx))
				opts = append(opts, web.WithProbe(p))
			}

			err = web.NewServer(cfg, opts...).Serve(ctx)
			appLog.Info("untiscal exiting")
			return err
		},
	}
}
