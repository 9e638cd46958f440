package cron

import (
	"testing"
	"time"
)

func TestTotalsCloseToleratesUlpDrift(t *testing.T) {
	// A Postgres-computed double can differ from Go's by an ulp for the
	// same inputs; that must not count as drift.
	base := 31.0 / 3.0
	shifted := base + 1e-12
	if !totalsClose(base, shifted) {
		t.Errorf("totalsClose(%v, %v) = false, want true", base, shifted)
	}

	if totalsClose(20.0, 20.5) {
		t.Error("totalsClose(20.0, 20.5) = true, want false")
	}
	if !totalsClose(7.0, 7.0) {
		t.Error("totalsClose(7.0, 7.0) = false, want true")
	}
}

func TestWarmedBandCountsTTLCoversWarmInterval(t *testing.T) {
	// The warm job runs every 6 hours; an entry that expires before the
	// next run leaves the cache cold for most of the cycle.
	warmInterval := 6 * time.Hour
	if warmedBandCountsTTL < warmInterval {
		t.Errorf("warmedBandCountsTTL = %v, want >= %v", warmedBandCountsTTL, warmInterval)
	}
}
