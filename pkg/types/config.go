// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"encoding/json"
	"fmt"
	"os"
)

// ProviderType identifies a storage provider adapter.
type ProviderType string

const (
	ProviderTypeS3 ProviderType = "s3"
)

// ProviderConfig configures one storage provider adapter.
type ProviderConfig struct {
	Type      ProviderType `json:"type"`
	Endpoint  string       `json:"endpoint,omitempty"`
	Region    string       `json:"region,omitempty"`
	AccessKey string       `json:"access_key,omitempty"`
	SecretKey string       `json:"secret_key,omitempty"`

	// SignRoleARN is the role assumed when minting delegated credentials.
	SignRoleARN string `json:"sign_role_arn,omitempty"`
}

// IndexConfig configures the external index used to resolve opaque
// references into unsigned storage locations.
type IndexConfig struct {
	Endpoint string `json:"endpoint"`
	// Kind restricts queries to one record kind; empty matches all.
	Kind string `json:"kind,omitempty"`
	// MaxPageSize is the index's advertised page-size ceiling.
	MaxPageSize int `json:"max_page_size,omitempty"`
	// TimeoutSeconds bounds a single query round trip.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// DeliveryConfig is the top-level configuration for the delivery engine.
type DeliveryConfig struct {
	Provider ProviderConfig `json:"provider"`
	Index    IndexConfig    `json:"index"`

	// BatchSize is this service's preferred reference batch size. The
	// effective size is min(BatchSize, Index.MaxPageSize), recomputed on
	// every pipeline run.
	BatchSize int `json:"batch_size,omitempty"`

	// DefaultExpiry uses the compact relative grammar; empty means 1H.
	DefaultExpiry string `json:"default_expiry,omitempty"`
}

// DefaultDeliveryConfig returns the defaults applied over a loaded config.
func DefaultDeliveryConfig() DeliveryConfig {
	return DeliveryConfig{
		Provider:  ProviderConfig{Type: ProviderTypeS3},
		Index:     IndexConfig{MaxPageSize: 1000, TimeoutSeconds: 30},
		BatchSize: 100,
	}
}

// LoadDeliveryConfigFromFile loads a delivery configuration from a JSON file,
// applying defaults for omitted fields.
func LoadDeliveryConfigFromFile(path string) (*DeliveryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read delivery config: %w", err)
	}

	cfg := DefaultDeliveryConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse delivery config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural pieces the engine cannot default.
func (c *DeliveryConfig) Validate() error {
	if c.Provider.Type == "" {
		return fmt.Errorf("provider type required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.Index.MaxPageSize <= 0 {
		return fmt.Errorf("index max_page_size must be positive")
	}
	return nil
}
