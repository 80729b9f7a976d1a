package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gpuinfo-agent/hardware"
	"gpuinfo-agent/logger"
	"gpuinfo-agent/observability"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Register this node and export GPU and host metrics",
	Args:  cobra.NoArgs,
	RunE:  runAgent,
}

func init() {
	rootCmd.AddCommand(agentCmd)
}

func runAgent(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Msg("starting gpuinfo agent")

	if err := hardware.InitializeHardware(); err != nil {
		logger.Warn().Err(err).Msg("hardware init failed, GPU readings will be limited")
	} else {
		defer hardware.ShutdownHardware()
	}

	state, err := hardware.LoadOrCreateState(cfg.StateFile)
	if err != nil {
		return fmt.Errorf("load agent state: %w", err)
	}

	otelShutdown, err := observability.InitProviders(ctx, cfg.OTel, cfg.HostMountsFile, state.NodeID)
	if err != nil {
		return fmt.Errorf("init observability providers: %w", err)
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("error shutting down observability providers")
		}
	}()
	logger.Info().Str("endpoint", cfg.OTel.Endpoint).Msg("observability initialized")

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	getSpecs := func() (hardware.HardwareSpecs, error) {
		return hardware.GetHardwareSpecs(state, cfg.HostMountsFile)
	}
	if err := hardware.VerifyAndSyncHardware(ctx, client, cfg.APIBaseURL, state.NodeID, getSpecs); err != nil {
		return fmt.Errorf("verify with backend: %w", err)
	}
	logger.Info().Str("node_id", state.NodeID).Msg("node verified and hardware synced")

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	return nil
}
