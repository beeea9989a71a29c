package config

import (
	"testing"
	"time"
)

func TestRegionalEndpoints(t *testing.T) {
	environ := []string{
		"REGION_US_EAST_1_API_URL=http://us.example.com/",
		"REGION_EU_WEST_1_API_URL=http://eu.example.com",
		"REGION__API_URL=http://empty-code.example.com",
		"REGIONAL_OTHER=nope",
		"PATH=/usr/bin",
	}

	endpoints := regionalEndpoints(environ)
	if len(endpoints) != 2 {
		t.Fatalf("expected 2 endpoints, got %d: %v", len(endpoints), endpoints)
	}
	if endpoints["us-east-1"] != "http://us.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", endpoints["us-east-1"])
	}
	if endpoints["eu-west-1"] != "http://eu.example.com" {
		t.Errorf("unexpected eu endpoint %q", endpoints["eu-west-1"])
	}
}

func TestLeaseTTLFallsBackOnGarbage(t *testing.T) {
	t.Setenv("EVENT_ASSIGNMENT_TTL_MINUTES", "not-a-number")

	cfg := Load()
	if cfg.LeaseTTL != 30*time.Minute {
		t.Fatalf("expected default 30m, got %v", cfg.LeaseTTL)
	}
}

func TestLeaseTTLFromMinutes(t *testing.T) {
	t.Setenv("EVENT_ASSIGNMENT_TTL_MINUTES", "45")

	cfg := Load()
	if cfg.LeaseTTL != 45*time.Minute {
		t.Fatalf("expected 45m, got %v", cfg.LeaseTTL)
	}
}

func TestNonPositiveTTLFallsBack(t *testing.T) {
	t.Setenv("EVENT_ASSIGNMENT_TTL_MINUTES", "-10")

	cfg := Load()
	if cfg.LeaseTTL != 30*time.Minute {
		t.Fatalf("expected default 30m, got %v", cfg.LeaseTTL)
	}
}
