package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"hermannm.dev/devlog"
)

var (
	connectURL string
	user       string
	password   string
	debug      bool
	logLevel   slog.LevelVar
)

var rootCmd = &cobra.Command{
	Use:   "boltcli",
	Short: "Command-line client for the graph database binary protocol",
}

// Execute adds all child commands to the root command and runs it.
// Called once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	slog.SetDefault(slog.New(devlog.NewHandler(os.Stdout, &devlog.Options{
		Level: &logLevel,
	})))

	rootCmd.PersistentFlags().String("url", "bolt://localhost:7687", "connect URL")
	rootCmd.PersistentFlags().String("user", "", "username")
	rootCmd.PersistentFlags().String("password", "", "password")
	rootCmd.PersistentFlags().Bool("debug", false, "print debug logging")

	_ = viper.BindPFlags(rootCmd.PersistentFlags())
	viper.SetEnvPrefix("boltcli")
	viper.AutomaticEnv()
}

// rootCmdLoadConfig resolves the persistent flags (and any bound
// environment variables) into the package-level config variables. It
// is called by each subcommand's PreRunE, mirroring the flag/viper
// binding shape common across this codebase's command tree.
func rootCmdLoadConfig() error {
	connectURL = viper.GetString("url")
	user = viper.GetString("user")
	password = viper.GetString("password")
	debug = viper.GetBool("debug")
	if debug {
		logLevel.Set(slog.LevelDebug)
	}
	return nil
}
