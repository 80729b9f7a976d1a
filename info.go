package main

import (
	"github.com/spf13/cobra"

	"gpuinfo-agent/addon"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the GPU info record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pretty, _ := cmd.Flags().GetBool("pretty")
		return writeJSON(cmd.OutOrStdout(), addon.GetSyclGpuInfo(addon.NewEnv()), pretty)
	},
}

func init() {
	infoCmd.Flags().Bool("pretty", false, "indent output")
	rootCmd.AddCommand(infoCmd)
}
