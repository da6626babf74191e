package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/barasalah2/chartflow/server"
	"github.com/barasalah2/chartflow/translator"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		var suggester translator.Suggester
		if cfg.AI.Endpoint != "" || cfg.AI.APIKey != "" {
			suggester, err = translator.New(ctx, cfg.Translator(), logger)
			if err != nil {
				return err
			}
		} else {
			logger.Warn("no visualization service configured, /api/suggest is disabled")
		}

		srv := server.New(server.Config{
			Addr:            cfg.Server.Addr,
			ReadTimeout:     cfg.GetReadTimeout(),
			WriteTimeout:    cfg.GetWriteTimeout(),
			ShutdownTimeout: cfg.GetShutdownTimeout(),
			MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		}, server.Deps{
			Store:     st,
			Board:     newBoard(),
			Suggester: suggester,
			Logger:    logger,
		})
		logger.Info("chartflow starting", zap.String("version", version), zap.String("db", cfg.Storage.DatabasePath))
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}
