package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	DatabaseURL string // LATTICE_DATABASE_URL (optional; postgres backend when set)
	DataDir     string // LATTICE_DATA_DIR (default ~/.local/share/lattice; embedded store)
	NATSURL     string // LATTICE_NATS_URL (optional, empty = no events)

	// Snapshot settings
	SnapshotInterval   time.Duration // LATTICE_SNAPSHOT_INTERVAL (default 0 = disabled)
	SnapshotS3Bucket   string        // LATTICE_SNAPSHOT_S3_BUCKET (enables S3 when set)
	SnapshotS3Endpoint string        // LATTICE_SNAPSHOT_S3_ENDPOINT (custom endpoint for MinIO)
	SnapshotS3Region   string        // LATTICE_SNAPSHOT_S3_REGION (default "us-east-1")
	SnapshotS3Key      string        // LATTICE_SNAPSHOT_S3_KEY (default "lattice/snapshot.jsonl")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:        os.Getenv("LATTICE_DATABASE_URL"),
		DataDir:            envOrDefault("LATTICE_DATA_DIR", defaultDataDir()),
		NATSURL:            os.Getenv("LATTICE_NATS_URL"),
		SnapshotS3Bucket:   os.Getenv("LATTICE_SNAPSHOT_S3_BUCKET"),
		SnapshotS3Endpoint: os.Getenv("LATTICE_SNAPSHOT_S3_ENDPOINT"),
		SnapshotS3Region:   envOrDefault("LATTICE_SNAPSHOT_S3_REGION", "us-east-1"),
		SnapshotS3Key:      envOrDefault("LATTICE_SNAPSHOT_S3_KEY", "lattice/snapshot.jsonl"),
	}

	intervalStr := envOrDefault("LATTICE_SNAPSHOT_INTERVAL", "0s")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("LATTICE_SNAPSHOT_INTERVAL: %w", err)
		}
		c.SnapshotInterval = d
	}

	return c, nil
}

// defaultDataDir places the embedded store under the user's XDG data
// directory, falling back to a dot directory when home is unknown.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lattice"
	}
	return filepath.Join(home, ".local", "share", "lattice")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
