// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the mindgraph CLI.
package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/mindgraph/internal/httputil"
	"github.com/pdiddy/mindgraph/internal/logging"
	"github.com/pdiddy/mindgraph/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is built in PersistentPreRunE from --log-level and --dev.
var logger = zap.NewNop()

// rootCmd is the base command for the mindgraph CLI.
var rootCmd = &cobra.Command{
	Use:   "mindgraph",
	Short: "Generate and analyze AI mind maps",
	Long: `mindgraph turns a free-text topic into a mind map with a Generative AI
model, stores mind maps in a local SQLite database, and analyzes them as a
concept graph: shortest paths, centrality, clusters, a consistency score, and
semantic similarity between concepts.

Each stage is a subcommand: generate, analyze, path, maps, and serve.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		dev, _ := cmd.Flags().GetBool("dev")
		l, err := logging.New(level, dev)
		if err != nil {
			return err
		}
		logger = l
		httputil.Logger = l.Named("http")

		if f := viper.ConfigFileUsed(); f != "" {
			logger.Info("using config file", zap.String("path", f))
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./mindgraph.yaml or ~/.config/mindgraph/mindgraph.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of API key files")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("dev", false, "human-readable development logging")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding mindgraph.db (default: data)")

	_ = viper.BindPFlag("store.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("mindgraph")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "mindgraph"))
		}
	}

	setDefaults()

	viper.SetEnvPrefix("MINDGRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
