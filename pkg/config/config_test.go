package config

import (
	"os"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig() should validate, got %v", err)
	}
	if cfg.Database.DataDir != "" {
		t.Errorf("default DataDir should be empty (in-memory), got %q", cfg.Database.DataDir)
	}
}

func TestLoadFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("GRAPHDB_DATA_DIR", "/var/lib/graphdb")
	t.Setenv("GRAPHDB_SYNC_WRITES", "true")
	t.Setenv("GRAPHDB_TIMEOUT", "5s")

	cfg := LoadFromEnv()
	if cfg.Database.DataDir != "/var/lib/graphdb" {
		t.Errorf("DataDir = %q, want /var/lib/graphdb", cfg.Database.DataDir)
	}
	if !cfg.Database.SyncWrites {
		t.Error("SyncWrites = false, want true")
	}
	if cfg.CLI.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want 5s", cfg.CLI.Timeout)
	}
}

func TestGetEnvBoolAcceptsCommonTruthyForms(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{"true", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"", false},
	}
	for _, tt := range tests {
		if tt.val == "" {
			os.Unsetenv("GRAPHDB_TEST_BOOL")
		} else {
			t.Setenv("GRAPHDB_TEST_BOOL", tt.val)
		}
		got := getEnvBool("GRAPHDB_TEST_BOOL", false)
		if got != tt.want {
			t.Errorf("getEnvBool(%q) = %v, want %v", tt.val, got, tt.want)
		}
	}
}

func TestGetEnvDurationParsesSecondsFallback(t *testing.T) {
	t.Setenv("GRAPHDB_TEST_DURATION", "45")
	got := getEnvDuration("GRAPHDB_TEST_DURATION", time.Minute)
	if got != 45*time.Second {
		t.Errorf("getEnvDuration(\"45\") = %s, want 45s", got)
	}
}

func TestValidateRejectsNonPositiveTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CLI.Timeout = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject a zero timeout")
	}
}

func TestLoadFromFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/graphdb.yaml"
	content := "database:\n  data_dir: /data/graph\n  sync_writes: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Database.DataDir != "/data/graph" {
		t.Errorf("DataDir = %q, want /data/graph", cfg.Database.DataDir)
	}
	if !cfg.Database.SyncWrites {
		t.Error("SyncWrites = false, want true")
	}
	if cfg.CLI.Timeout != 30*time.Second {
		t.Errorf("Timeout should keep its default when omitted from the file, got %s", cfg.CLI.Timeout)
	}
}
