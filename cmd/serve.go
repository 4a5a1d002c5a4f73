package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/questline/gamematch/internal/matcher"
	"github.com/questline/gamematch/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scoring HTTP service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		reranker, err := loadReranker(cfg.Match.ModelPath)
		if err != nil {
			return err
		}

		serverCfg := cfg.Server
		if servePort != 0 {
			serverCfg.Port = servePort
		}

		m := matcher.New(cfg.Match, reranker)
		return server.New(serverCfg, m, modelVersion(reranker)).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
