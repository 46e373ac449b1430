// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/LeeDigitalWorks/zapdeliver/pkg/delivery"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var deliverOpts struct {
	Actor       string
	Expiry      string
	Timeout     time.Duration
	MetricsAddr string
}

func init() {
	deliverCmd.Flags().StringVar(&deliverOpts.Actor, "actor", "", "Caller identity used for session naming and attribution")
	deliverCmd.Flags().StringVar(&deliverOpts.Expiry, "expiry", "", "Relative expiry (e.g. 15M, 12H, 7D); default 1H")
	deliverCmd.Flags().DurationVar(&deliverOpts.Timeout, "timeout", 2*time.Minute, "Overall resolution deadline")
	deliverCmd.Flags().StringVar(&deliverOpts.MetricsAddr, "metrics_addr", "", "Serve delivery metrics at this address while resolving (e.g. :9090)")
	rootCmd.AddCommand(deliverCmd)
}

// startMetricsServer exposes the delivery registry at /metrics for the
// lifetime of the command.
func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(delivery.Registry(), promhttp.HandlerOpts{}))
	go func() {
		logger.Info().Str("addr", addr).Msg("Serving delivery metrics")
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error().Err(err).Msg("Metrics server stopped")
		}
	}()
}

var deliverCmd = &cobra.Command{
	Use:   "deliver <reference> [reference...]",
	Short: "Resolve references into signed storage artifacts",
	Long: `Deliver resolves a batch of opaque references through the external index
and prints the partitioned result: signed entries keyed by reference plus the
ordered list of references that could not be resolved. Partial resolution is
a normal outcome, not an error.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadDeliveryConfig()
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to load delivery configuration")
		}

		pipeline, err := buildPipeline(cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to build delivery pipeline")
		}

		if deliverOpts.MetricsAddr != "" {
			startMetricsServer(deliverOpts.MetricsAddr)
		}

		ctx, cancel := context.WithTimeout(context.Background(), deliverOpts.Timeout)
		defer cancel()

		result, err := pipeline.Resolve(ctx, delivery.Request{
			References: args,
			Expiry:     deliverOpts.Expiry,
			Actor:      deliverOpts.Actor,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Delivery resolution failed")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			logger.Fatal().Err(err).Msg("Failed to encode result")
		}
	},
}
