package db

import (
	"encoding/json"
	"testing"
)

func TestHealthBody_JSON(t *testing.T) {
	body := healthBody{
		Status: "healthy",
		Pool: PoolStats{
			TotalConns:   4,
			IdleConns:    3,
			MaxConns:     20,
			AcquireCount: 17,
			AcquireWait:  "1.2ms",
		},
	}

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded["status"] != "healthy" {
		t.Errorf("expected status healthy, got %v", decoded["status"])
	}
	if _, present := decoded["error"]; present {
		t.Error("error field should be omitted when empty")
	}

	pool, ok := decoded["pool"].(map[string]any)
	if !ok {
		t.Fatal("expected pool object")
	}
	if pool["total_conns"] != float64(4) {
		t.Errorf("expected total_conns 4, got %v", pool["total_conns"])
	}
	if pool["acquire_wait"] != "1.2ms" {
		t.Errorf("expected acquire_wait 1.2ms, got %v", pool["acquire_wait"])
	}
}

func TestHealthBody_UnhealthyIncludesError(t *testing.T) {
	body := healthBody{Status: "unhealthy", Error: "connection refused"}

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["error"] != "connection refused" {
		t.Errorf("expected error field, got %v", decoded["error"])
	}
}
