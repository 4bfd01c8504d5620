package main

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gitlab.com/casesync.net/internal/config"
	logger2 "gitlab.com/casesync.net/internal/global/logger"
)

var (
	envName  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "casesync",
	Short: "Keep feature scenarios and TestRail cases in step",
	Long: `casesync creates TestRail cases for scenarios that have no @C<id> tag,
writes the new tags back into the feature files and hosts a fake TestRail
server for local runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logLevel != "" {
			logger2.SetLevel(logLevel)
		}
		if err := loadEnv(envName); err != nil {
			return err
		}
		logger2.Debug("Environment loaded", "env", envName)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "load <env>.env before reading configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newApplyTagsCmd())
	rootCmd.AddCommand(newMockServerCmd())
}

// loadEnv reads <name>.env, or .env when present if no name is given.
func loadEnv(name string) error {
	if name != "" {
		return godotenv.Load(name + ".env")
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func loadConfig() *config.AppConfig {
	cfg := config.NewSystemConfig()
	if cfg.DebugMode && logLevel == "" {
		logger2.SetLevel("debug")
	}
	return cfg
}
