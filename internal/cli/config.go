package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"benchcore/internal/blob"
	"benchcore/internal/index"
	"benchcore/internal/results"
)

// Config mirrors the benchres.yaml layout. File values act as defaults:
// an environment variable already set for the same knob wins.
type Config struct {
	Format string `yaml:"format,omitempty"` // csv|json
	Index  struct {
		Driver      string `yaml:"driver,omitempty"` // memory|sqlite|postgres
		SQLitePath  string `yaml:"sqlite_path,omitempty"`
		PostgresDSN string `yaml:"postgres_dsn,omitempty"`
	} `yaml:"index,omitempty"`
	Blob struct {
		Driver string `yaml:"driver,omitempty"` // fs|s3|memory
		FSRoot string `yaml:"fs_root,omitempty"`
		S3     struct {
			Bucket    string `yaml:"bucket,omitempty"`
			Region    string `yaml:"region,omitempty"`
			Endpoint  string `yaml:"endpoint,omitempty"`
			PathStyle bool   `yaml:"path_style,omitempty"`
		} `yaml:"s3,omitempty"`
	} `yaml:"blob,omitempty"`
}

// LoadConfig reads a YAML config file and projects its values into the
// process environment, skipping variables the caller already set. An
// empty path is a no-op so the CLI works without a config file.
func LoadConfig(path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.apply()
}

func (c Config) apply() error {
	pairs := []struct{ key, value string }{
		{results.EnvFormat, c.Format},
		{index.EnvDriver, c.Index.Driver},
		{index.EnvSQLitePath, c.Index.SQLitePath},
		{index.EnvPostgresDSN, c.Index.PostgresDSN},
		{blob.EnvDriver, c.Blob.Driver},
		{blob.EnvFSRoot, c.Blob.FSRoot},
		{"BENCHCORE_BLOB_S3_BUCKET", c.Blob.S3.Bucket},
		{"BENCHCORE_BLOB_S3_REGION", c.Blob.S3.Region},
		{"BENCHCORE_BLOB_S3_ENDPOINT", c.Blob.S3.Endpoint},
	}
	if c.Blob.S3.PathStyle {
		pairs = append(pairs, struct{ key, value string }{"BENCHCORE_BLOB_S3_PATH_STYLE", "true"})
	}
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		if _, set := os.LookupEnv(p.key); set {
			continue
		}
		if err := os.Setenv(p.key, p.value); err != nil {
			return err
		}
	}
	return nil
}
