package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Mongo.Database != "voxgate" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.TTS.Timeout != 30*time.Second || cfg.Gemini.Timeout != 15*time.Second {
		t.Errorf("unexpected timeouts: tts=%s gemini=%s", cfg.TTS.Timeout, cfg.Gemini.Timeout)
	}
	if !cfg.Gemini.Enabled || cfg.TTS.DefaultVoice != "en-US-Wavenet-D" {
		t.Errorf("unexpected provider defaults: %+v %+v", cfg.Gemini, cfg.TTS)
	}
	if cfg.Redis.CacheTTL != 24*time.Hour || cfg.AuditWorkers != 4 {
		t.Errorf("unexpected cache/audit defaults: %+v", cfg)
	}
	if loc, _ := cfg.Location(); loc != time.Local {
		t.Errorf("expected local timezone, got %v", loc)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":               "9090",
		"ENRICHMENT_ENABLED": "false",
		"USAGE_TIMEZONE":     "UTC",
		"AUDIT_WORKERS":      "0",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.Gemini.Enabled {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.AuditWorkers != 1 {
		t.Errorf("expected worker floor of 1, got %d", cfg.AuditWorkers)
	}
	if loc, _ := cfg.Location(); loc.String() != "UTC" {
		t.Errorf("expected UTC, got %v", loc)
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"USAGE_TIMEZONE": "Mars/Olympus",
	}))
	if err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
