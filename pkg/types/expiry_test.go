// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		input string
		want  Expiry
	}{
		{"15M", Expiry{15, ExpiryUnitMinute}},
		{"12H", Expiry{12, ExpiryUnitHour}},
		{"7D", Expiry{7, ExpiryUnitDay}},
		{"M", Expiry{1, ExpiryUnitMinute}},
		{"H", Expiry{1, ExpiryUnitHour}},
		{"D", Expiry{1, ExpiryUnitDay}},
		{"90m", Expiry{90, ExpiryUnitMinute}},
		{"2h", Expiry{2, ExpiryUnitHour}},
		{"", DefaultExpiry},
		{"  ", DefaultExpiry},
		{"0M", DefaultExpiry},
		{"-5H", DefaultExpiry},
		{"15", DefaultExpiry},
		{"15X", DefaultExpiry},
		{"abcH", DefaultExpiry},
		{"1.5H", DefaultExpiry},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseExpiry(tt.input))
		})
	}
}

func TestExpiryDuration(t *testing.T) {
	assert.Equal(t, 15*time.Minute, Expiry{15, ExpiryUnitMinute}.Duration())
	assert.Equal(t, 12*time.Hour, Expiry{12, ExpiryUnitHour}.Duration())
	assert.Equal(t, 7*24*time.Hour, Expiry{7, ExpiryUnitDay}.Duration())
	assert.Equal(t, int64(900), Expiry{15, ExpiryUnitMinute}.Seconds())
}

func TestExpiryClamp(t *testing.T) {
	ceiling := time.Hour

	tests := []struct {
		name   string
		expiry Expiry
		want   time.Duration
	}{
		{"below ceiling", Expiry{15, ExpiryUnitMinute}, 15 * time.Minute},
		{"at ceiling", Expiry{1, ExpiryUnitHour}, time.Hour},
		{"above ceiling", Expiry{12, ExpiryUnitHour}, time.Hour},
		{"far above ceiling", Expiry{7, ExpiryUnitDay}, time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expiry.Clamp(ceiling))
			assert.LessOrEqual(t, tt.expiry.Clamp(ceiling), ceiling)
		})
	}

	// Zero ceiling means no clamp
	assert.Equal(t, 12*time.Hour, Expiry{12, ExpiryUnitHour}.Clamp(0))
}

func TestExpiryString(t *testing.T) {
	assert.Equal(t, "15M", Expiry{15, ExpiryUnitMinute}.String())
	assert.Equal(t, "1H", DefaultExpiry.String())
}
