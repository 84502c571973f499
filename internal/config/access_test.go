package config

import "testing"

func TestGetPath(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.Harness.MaxCommandBytes = 16
	cfg.Harness.Armed = true

	tests := []struct {
		path string
		want any
	}{
		{"service.name", "faultline"},
		{"harness.armed", true},
		{"harness.max_command_bytes", 16},
		{"state.path", "./data/journal.db"},
	}
	for _, tt := range tests {
		got, err := cfg.GetPath(tt.path)
		if err != nil {
			t.Fatalf("GetPath(%q): %v", tt.path, err)
		}
		if got != tt.want {
			t.Fatalf("GetPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if _, err := cfg.GetPath("harness.nonexistent"); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if _, err := cfg.GetPath("service.name.deeper"); err == nil {
		t.Fatal("expected error for traversing a scalar")
	}
}
