package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"gpuinfo-agent/config"
	"gpuinfo-agent/logger"
)

var rootCmd = &cobra.Command{
	Use:           "gpuinfo",
	Short:         "GPU info reporter and node agent",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal().Err(err).Str("command", os.Args[0]).Msg("gpuinfo failed")
	}
}

// loadConfig reads --config and initialises the logger from it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
