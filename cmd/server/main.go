package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-ircd/internal/app"
	"github.com/vovakirdan/wirechat-ircd/internal/auth"
	"github.com/vovakirdan/wirechat-ircd/internal/config"
	"github.com/vovakirdan/wirechat-ircd/internal/log"
	"github.com/vovakirdan/wirechat-ircd/internal/store/sqlite"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "wirechat-ircd",
		Short:        "WireChat IRC server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.AddCommand(operCmd(&configPath))
	return cmd
}

func runServe(configPath string) error {
	logger := log.New("info")

	cfg, path, err := config.Load(logger, configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = log.New(cfg.LogLevel)
	logger.Info().Str("config", path).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Str("ws_addr", cfg.WSAddr).
		Str("admin_addr", cfg.AdminAddr).
		Msg("starting server")
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// operCmd seeds operator accounts without starting the server.
func operCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "oper <username> <password>",
		Short: "Create an operator account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New("info")
			cfg, _, err := config.Load(logger, *configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			st, err := sqlite.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			svc := auth.NewService(st, &auth.JWTConfig{TTL: time.Hour}, logger)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			acc, err := svc.CreateAccount(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("create account: %w", err)
			}
			logger.Info().Str("username", acc.Username).Msg("operator account created")
			return nil
		},
	}
}
