// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"strconv"
	"strings"
	"time"
)

// ExpiryUnit is the unit of a relative expiry expression.
type ExpiryUnit int

const (
	ExpiryUnitMinute ExpiryUnit = iota
	ExpiryUnitHour
	ExpiryUnitDay
)

func (u ExpiryUnit) String() string {
	switch u {
	case ExpiryUnitMinute:
		return "M"
	case ExpiryUnitHour:
		return "H"
	case ExpiryUnitDay:
		return "D"
	default:
		return "?"
	}
}

// Expiry is a relative time-to-live parsed from a compact expression such as
// "15M", "12H", or "7D". The magnitude is always a positive whole number.
type Expiry struct {
	Magnitude int
	Unit      ExpiryUnit
}

// DefaultExpiry is used whenever a caller omits the expiry or supplies
// something unparseable. Expiry is an optimization knob, not a correctness
// input, so bad values fall back rather than fail.
var DefaultExpiry = Expiry{Magnitude: 1, Unit: ExpiryUnitHour}

// ParseExpiry parses a compact relative expiry expression. The grammar is an
// optional positive integer (default 1) followed by a unit letter: M for
// minutes, H for hours, D for days. Missing, malformed, or non-positive input
// yields DefaultExpiry.
func ParseExpiry(s string) Expiry {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultExpiry
	}

	unit, ok := parseExpiryUnit(s[len(s)-1])
	if !ok {
		return DefaultExpiry
	}

	digits := s[:len(s)-1]
	if digits == "" {
		return Expiry{Magnitude: 1, Unit: unit}
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return DefaultExpiry
	}
	return Expiry{Magnitude: n, Unit: unit}
}

func parseExpiryUnit(c byte) (ExpiryUnit, bool) {
	switch c {
	case 'M', 'm':
		return ExpiryUnitMinute, true
	case 'H', 'h':
		return ExpiryUnitHour, true
	case 'D', 'd':
		return ExpiryUnitDay, true
	default:
		return 0, false
	}
}

// Duration converts the expiry to a wall-clock duration.
func (e Expiry) Duration() time.Duration {
	switch e.Unit {
	case ExpiryUnitMinute:
		return time.Duration(e.Magnitude) * time.Minute
	case ExpiryUnitHour:
		return time.Duration(e.Magnitude) * time.Hour
	case ExpiryUnitDay:
		return time.Duration(e.Magnitude) * 24 * time.Hour
	default:
		return DefaultExpiry.Duration()
	}
}

// Seconds returns the expiry as whole seconds.
func (e Expiry) Seconds() int64 {
	return int64(e.Duration() / time.Second)
}

// Clamp caps the expiry at ceiling. The clamp is applied again at the point
// where a credential is actually requested, because the ceiling is a property
// of the issuing path, not of the expiry expression.
func (e Expiry) Clamp(ceiling time.Duration) time.Duration {
	d := e.Duration()
	if ceiling > 0 && d > ceiling {
		return ceiling
	}
	return d
}

func (e Expiry) String() string {
	return strconv.Itoa(e.Magnitude) + e.Unit.String()
}
