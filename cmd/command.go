// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"

	"github.com/LeeDigitalWorks/zapdeliver/pkg/delivery"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/index"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/repository"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/types"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/utils"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "zapdeliver",
	Short: "ZapDeliver - scoped delivery of object storage access",
	Long: `ZapDeliver brokers short-lived, scope-limited access to object storage
on behalf of callers holding only opaque references. It resolves references
through an external index, mints signed URLs or temporary credentials scoped
to exactly one object or prefix, and reports partial results explicitly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&utils.ConfigurationFileDirectory, "config_dir", ".", "Directory for configuration files")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a delivery config JSON file (overrides discovered config)")
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadDeliveryConfig resolves configuration for the delivery commands:
// the --config JSON file when given, otherwise the discovered "delivery"
// config with environment overrides.
func loadDeliveryConfig() (*types.DeliveryConfig, error) {
	if configFile != "" {
		return types.LoadDeliveryConfigFromFile(utils.ResolvePath(configFile))
	}

	utils.LoadConfiguration("delivery", false)

	cfg := types.DefaultDeliveryConfig()
	if v := viper.GetString("provider.type"); v != "" {
		cfg.Provider.Type = types.ProviderType(v)
	}
	cfg.Provider.Endpoint = viper.GetString("provider.endpoint")
	cfg.Provider.Region = viper.GetString("provider.region")
	cfg.Provider.AccessKey = viper.GetString("provider.access_key")
	cfg.Provider.SecretKey = viper.GetString("provider.secret_key")
	cfg.Provider.SignRoleARN = viper.GetString("provider.sign_role_arn")
	cfg.Index.Endpoint = viper.GetString("index.endpoint")
	cfg.Index.Kind = viper.GetString("index.kind")
	if v := viper.GetInt("index.max_page_size"); v > 0 {
		cfg.Index.MaxPageSize = v
	}
	if v := viper.GetInt("index.timeout_seconds"); v > 0 {
		cfg.Index.TimeoutSeconds = v
	}
	if v := viper.GetInt("batch_size"); v > 0 {
		cfg.BatchSize = v
	}
	cfg.DefaultExpiry = viper.GetString("default_expiry")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// buildPipeline wires the delivery pipeline from configuration.
func buildPipeline(cfg *types.DeliveryConfig) (*delivery.Pipeline, error) {
	repo, err := repository.New(cfg.Provider)
	if err != nil {
		return nil, err
	}

	searcher := index.NewClient(cfg.Index, nil)
	extractor := index.NewFieldPathExtractor("")

	snapshot := *cfg
	return delivery.NewPipeline(repo, searcher, extractor, func() types.DeliveryConfig {
		return snapshot
	}), nil
}
