package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/mealsense/internal/config"
	"github.com/bryanwahyu/mealsense/internal/logging"
)

var (
	configPath string
	envFiles   []string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "mealsense",
	Short: "MealSense - meal analysis API and credential diagnostics",
	Long: `MealSense turns meal descriptions and photos into nutrient breakdowns
using an OpenAI model, validates and normalizes the model output, and reports
on the health of the service-account credentials it runs with.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv(envFiles...)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to the YAML config file")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Dotenv files to load (default .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(validateCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "config.yaml"
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Production(), debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
