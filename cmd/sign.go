// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/LeeDigitalWorks/zapdeliver/pkg/logger"

	"github.com/spf13/cobra"
)

var signOpts struct {
	Actor   string
	Expiry  string
	Timeout time.Duration
}

func init() {
	signCmd.Flags().StringVar(&signOpts.Actor, "actor", "", "Caller identity recorded as created_by")
	signCmd.Flags().StringVar(&signOpts.Expiry, "expiry", "", "Relative expiry (e.g. 15M, 12H, 7D); default 1H")
	signCmd.Flags().DurationVar(&signOpts.Timeout, "timeout", 30*time.Second, "Signing deadline")
	rootCmd.AddCommand(signCmd)
}

var signCmd = &cobra.Command{
	Use:   "sign <file-id>",
	Short: "Mint a signed URL for a single file ID",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadDeliveryConfig()
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to load delivery configuration")
		}

		pipeline, err := buildPipeline(cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to build delivery pipeline")
		}

		ctx, cancel := context.WithTimeout(context.Background(), signOpts.Timeout)
		defer cancel()

		signed, err := pipeline.CreateSignedURL(ctx, args[0], signOpts.Actor, signOpts.Expiry)
		if err != nil {
			logger.Fatal().Err(err).Str("file_id", args[0]).Msg("Signing failed")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(signed); err != nil {
			logger.Fatal().Err(err).Msg("Failed to encode result")
		}
	},
}
