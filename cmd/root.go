package cmd

import (
	"fmt"
	"os"

	"garageflow-backend/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "1.0.0"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "garageflow",
	Short: "GarageFlow - invoicing backend for auto repair shops",
	Long: `GarageFlow is the API server behind the GarageFlow web app. Shops manage
customers and vehicles, issue numbered invoices and follow up on payments.

Run "garageflow serve" to start the HTTP API and "garageflow migrate up" to
prepare the database schema.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: ./config.toml or /etc/garageflow/config.toml)")
}

// loadConfig reads the configuration and builds the logger from it.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, config.NewLogger(cfg.Log), nil
}
