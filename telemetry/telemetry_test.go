package telemetry_test

import (
	"context"
	"strings"
	"testing"

	"github.com/wricardo/tactics-duel/settings"
	"github.com/wricardo/tactics-duel/telemetry"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name string
		cfg  settings.Tracing
	}{
		{"no endpoint", settings.Tracing{Enabled: true, SampleRatio: 1}},
		{"disabled", settings.Tracing{Enabled: false, Endpoint: "http://localhost:4318", SampleRatio: 1}},
		// Non-routable address so nothing is exported
		{"endpoint set", settings.Tracing{Enabled: true, Endpoint: "http://192.0.2.1:4318", SampleRatio: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown, err := telemetry.Setup(context.Background(), "tactics-duel-test", "0.0.0", tt.cfg)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("Shutdown error: %v", err)
			}
		})
	}
}

func TestSetup_InactiveShutdownIgnoresCancelledContext(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), "tactics-duel-test", "0.0.0", settings.Tracing{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("Inactive shutdown should not error: %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1, "AlwaysOnSampler"},
		{0.25, "ParentBased"},
		{0, "ParentBased"},
	}
	for _, tt := range tests {
		got := telemetry.Sampler(tt.ratio).Description()
		if !strings.HasPrefix(got, tt.want) {
			t.Errorf("Sampler(%g): expected %s, got %s", tt.ratio, tt.want, got)
		}
	}
}
