package db

import (
	"encoding/json"
	"testing"
)

func TestPoolStats_JSONShape(t *testing.T) {
	stats := &PoolStats{
		TotalConns:      10,
		IdleConns:       5,
		AcquiredConns:   5,
		MaxConns:        20,
		AcquireCount:    100,
		AcquireDuration: "1.5s",
		Healthy:         true,
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{
		"total_conns", "idle_conns", "acquired_conns", "max_conns",
		"acquire_count", "acquire_duration", "healthy",
	} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q in health payload", key)
		}
	}
	if m["healthy"] != true {
		t.Errorf("healthy = %v, want true", m["healthy"])
	}
	if m["acquire_duration"] != "1.5s" {
		t.Errorf("acquire_duration = %v, want 1.5s", m["acquire_duration"])
	}
}
