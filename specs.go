package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpuinfo-agent/hardware"
	"gpuinfo-agent/logger"
)

var specsCmd = &cobra.Command{
	Use:   "specs",
	Short: "Collect and print this node's hardware specs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if err := hardware.InitializeHardware(); err != nil {
			logger.Warn().Err(err).Msg("hardware init failed, GPU readings will be limited")
		} else {
			defer hardware.ShutdownHardware()
		}

		specs, err := hardware.GetHardwareSpecs(hardware.AgentState{}, cfg.HostMountsFile)
		if err != nil {
			return fmt.Errorf("could not collect hardware specs: %w", err)
		}
		return writeJSON(cmd.OutOrStdout(), specs, true)
	},
}

func init() {
	rootCmd.AddCommand(specsCmd)
}
