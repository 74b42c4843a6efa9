package config

import (
	"strings"
	"testing"
	"time"
)

// snapshotEnvVars lists all snapshot-related env vars that must be cleared between tests.
var snapshotEnvVars = []string{
	"LATTICE_SNAPSHOT_INTERVAL", "LATTICE_SNAPSHOT_S3_BUCKET", "LATTICE_SNAPSHOT_S3_ENDPOINT",
	"LATTICE_SNAPSHOT_S3_REGION", "LATTICE_SNAPSHOT_S3_KEY",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"LATTICE_DATABASE_URL", "LATTICE_DATA_DIR", "LATTICE_NATS_URL"} {
		t.Setenv(key, "")
	}
	for _, key := range snapshotEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	for _, tc := range []struct {
		name        string
		env         map[string]string
		wantDBURL   string
		wantNATSURL string
	}{
		{
			// No database URL is not an error: the embedded store is the default.
			name: "Defaults",
			env:  map[string]string{},
		},
		{
			name:      "PostgresBackend",
			env:       map[string]string{"LATTICE_DATABASE_URL": "postgres://localhost/lattice"},
			wantDBURL: "postgres://localhost/lattice",
		},
		{
			name: "EventsEnabled",
			env: map[string]string{
				"LATTICE_NATS_URL": "nats://localhost:4222",
			},
			wantNATSURL: "nats://localhost:4222",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clearAllEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.DatabaseURL != tc.wantDBURL {
				t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, tc.wantDBURL)
			}
			if cfg.NATSURL != tc.wantNATSURL {
				t.Errorf("NATSURL = %q, want %q", cfg.NATSURL, tc.wantNATSURL)
			}
			if cfg.DataDir == "" {
				t.Error("DataDir empty, want a default")
			}
		})
	}
}

func TestLoadDataDir(t *testing.T) {
	clearAllEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(cfg.DataDir, "lattice") {
		t.Errorf("default DataDir = %q, want a lattice directory", cfg.DataDir)
	}

	t.Setenv("LATTICE_DATA_DIR", "/var/lib/lattice")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataDir != "/var/lib/lattice" {
		t.Errorf("DataDir = %q, want /var/lib/lattice", cfg.DataDir)
	}
}

func TestLoadSnapshotDefaults(t *testing.T) {
	clearAllEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SnapshotInterval != 0 {
		t.Errorf("SnapshotInterval = %v, want 0 (disabled)", cfg.SnapshotInterval)
	}
	if cfg.SnapshotS3Region != "us-east-1" {
		t.Errorf("SnapshotS3Region = %q, want %q", cfg.SnapshotS3Region, "us-east-1")
	}
	if cfg.SnapshotS3Key != "lattice/snapshot.jsonl" {
		t.Errorf("SnapshotS3Key = %q, want %q", cfg.SnapshotS3Key, "lattice/snapshot.jsonl")
	}
	if cfg.SnapshotS3Bucket != "" {
		t.Errorf("SnapshotS3Bucket = %q, want empty", cfg.SnapshotS3Bucket)
	}
}

func TestLoadSnapshotCustom(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("LATTICE_SNAPSHOT_INTERVAL", "10m")
	t.Setenv("LATTICE_SNAPSHOT_S3_BUCKET", "my-bucket")
	t.Setenv("LATTICE_SNAPSHOT_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("LATTICE_SNAPSHOT_S3_REGION", "eu-west-1")
	t.Setenv("LATTICE_SNAPSHOT_S3_KEY", "custom/key.jsonl")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SnapshotInterval != 10*time.Minute {
		t.Errorf("SnapshotInterval = %v, want 10m", cfg.SnapshotInterval)
	}
	if cfg.SnapshotS3Bucket != "my-bucket" {
		t.Errorf("SnapshotS3Bucket = %q", cfg.SnapshotS3Bucket)
	}
	if cfg.SnapshotS3Endpoint != "http://minio:9000" {
		t.Errorf("SnapshotS3Endpoint = %q", cfg.SnapshotS3Endpoint)
	}
	if cfg.SnapshotS3Region != "eu-west-1" {
		t.Errorf("SnapshotS3Region = %q", cfg.SnapshotS3Region)
	}
	if cfg.SnapshotS3Key != "custom/key.jsonl" {
		t.Errorf("SnapshotS3Key = %q", cfg.SnapshotS3Key)
	}
}

func TestLoadSnapshotInvalidInterval(t *testing.T) {
	clearAllEnv(t)
	t.Setenv("LATTICE_SNAPSHOT_INTERVAL", "not-a-duration")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid LATTICE_SNAPSHOT_INTERVAL")
	}
}

func TestEnvOrDefault(t *testing.T) {
	for _, tc := range []struct {
		name     string
		key      string
		envVal   string
		fallback string
		want     string
	}{
		{"EmptyUsesDefault", "TEST_ENVDEFAULT_EMPTY", "", "default-val", "default-val"},
		{"SetUsesEnv", "TEST_ENVDEFAULT_SET", "custom", "default-val", "custom"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.envVal)
			got := envOrDefault(tc.key, tc.fallback)
			if got != tc.want {
				t.Errorf("envOrDefault(%q, %q) = %q, want %q", tc.key, tc.fallback, got, tc.want)
			}
		})
	}
}
