package telemetry

import (
	"context"
	"testing"
)

func TestSetupDisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{})
	if err != nil {
		t.Fatalf("Setup disabled: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestHeaders(t *testing.T) {
	if h := (Config{}).Headers(); h != nil {
		t.Errorf("Expected no headers without an API key, got %v", h)
	}

	h := Config{APIKey: "key"}.Headers()
	if h["x-honeycomb-team"] != "key" {
		t.Errorf("Unexpected team header %q", h["x-honeycomb-team"])
	}
	if h["x-honeycomb-dataset"] != "cardclash" {
		t.Errorf("Expected default dataset, got %q", h["x-honeycomb-dataset"])
	}

	h = Config{APIKey: "key", Dataset: "staging"}.Headers()
	if h["x-honeycomb-dataset"] != "staging" {
		t.Errorf("Expected staging dataset, got %q", h["x-honeycomb-dataset"])
	}
}
