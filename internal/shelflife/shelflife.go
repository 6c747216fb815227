// Package shelflife implements the production-date arithmetic at the heart of
// the bot: given a delivery date and shelf-life parameters, compute the
// earliest permissible production date so that the remaining shelf-life
// percentage (OSG) at delivery still meets the configured target.
//
// The decay model is linear: 100% at manufacture, 0% at the end of the
// shelf-life window. All arithmetic is done in decimal to keep values like
// 360*0.18 = 64.8 exact, so the rounding policy is never perturbed by binary
// float artifacts.
package shelflife

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Rounding selects how the fractional allowed age is turned into whole days.
type Rounding int

const (
	// RoundingCeil rounds the maximum elapsed days up, producing the earlier
	// (more conservative) production-date bound. This is the default.
	RoundingCeil Rounding = iota

	// RoundingTrunc truncates toward zero, matching the historical behavior
	// of the orders-sheet deployment.
	RoundingTrunc
)

// String returns the configuration name of the rounding policy.
func (r Rounding) String() string {
	if r == RoundingTrunc {
		return "trunc"
	}
	return "ceil"
}

// ParseRounding parses a rounding policy name ("ceil" or "trunc").
func ParseRounding(s string) (Rounding, error) {
	switch s {
	case "", "ceil":
		return RoundingCeil, nil
	case "trunc":
		return RoundingTrunc, nil
	default:
		return RoundingCeil, fmt.Errorf("unknown rounding policy %q (want ceil or trunc)", s)
	}
}

// Params holds the immutable shelf-life parameters. They are supplied once at
// startup and validated there; MinProductionDate assumes validated values.
type Params struct {
	// ShelfLifeDays is the total number of days a product remains usable
	// from production. Must be positive.
	ShelfLifeDays int

	// TargetPercent is the minimum remaining shelf-life percentage required
	// at the delivery date. Must lie in [0, 100).
	TargetPercent decimal.Decimal

	// SafetyBufferDays is subtracted from the allowed age to create margin
	// beyond the strict percentage requirement. Must be non-negative.
	SafetyBufferDays int

	// Rounding selects ceiling or truncation of the fractional allowed age.
	Rounding Rounding
}

var hundred = decimal.NewFromInt(100)

// Validate checks the parameter invariants. It is called once at startup so
// that invalid configuration fails fast instead of being clamped per call.
func (p Params) Validate() error {
	if p.ShelfLifeDays <= 0 {
		return fmt.Errorf("shelf life must be positive, got %d days", p.ShelfLifeDays)
	}
	if p.TargetPercent.IsNegative() || p.TargetPercent.GreaterThanOrEqual(hundred) {
		return fmt.Errorf("target percent must be in [0, 100), got %s", p.TargetPercent)
	}
	if p.SafetyBufferDays < 0 {
		return fmt.Errorf("safety buffer must be non-negative, got %d days", p.SafetyBufferDays)
	}
	return nil
}

// AllowedAgeDays returns the maximum number of whole days between production
// and delivery that still satisfies the target percentage, after rounding and
// the safety buffer. The result is clamped at zero: a buffer larger than the
// elapsed-days budget must not push the production date past the delivery.
func (p Params) AllowedAgeDays() int {
	maxElapsed := decimal.NewFromInt(int64(p.ShelfLifeDays)).
		Mul(hundred.Sub(p.TargetPercent)).
		Div(hundred)

	var whole int64
	switch p.Rounding {
	case RoundingTrunc:
		whole = maxElapsed.IntPart()
	default:
		whole = maxElapsed.Ceil().IntPart()
	}

	allowed := whole - int64(p.SafetyBufferDays)
	if allowed < 0 {
		return 0
	}
	return int(allowed)
}

// MinProductionDate computes the earliest permissible production date for the
// given delivery date. The result is a calendar date (midnight, delivery's
// location) and is never later than the delivery date.
func MinProductionDate(delivery time.Time, p Params) time.Time {
	d := delivery.AddDate(0, 0, -p.AllowedAgeDays())
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}
