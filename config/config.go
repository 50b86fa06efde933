package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the engine tunables the host loads once at startup (spec §3,
// §4.1, §4.8). Unlike the teacher's validator key material, nothing here is
// secret, so no key generation is required on first run.
type Config struct {
	MinPublisherDurationMS uint64        `toml:"MinPublisherDurationMS"`
	MinVisits              uint32        `toml:"MinVisits"`
	ScoreDomain            float64       `toml:"ScoreDomain"`
	AllowNonVerified       bool          `toml:"AllowNonVerified"`
	AllowVideos            bool          `toml:"AllowVideos"`
	RegistryRefreshSeconds uint64        `toml:"RegistryRefreshSeconds"`
	RegistryRetryMinSecs   uint64        `toml:"RegistryRetryMinSecs"`
	RegistryRetryMaxSecs   uint64        `toml:"RegistryRetryMaxSecs"`
	BallotBudgetDefault    uint32        `toml:"BallotBudgetDefault"`
	DataDir                string        `toml:"DataDir"`
}

// DefaultConfig mirrors the values assumed throughout spec.md's worked
// examples (§8): an 8 second minimum visit and the domain constant that
// keeps the concave kernel's a coefficient positive (1/(2*ScoreDomain) must
// exceed MinPublisherDurationMS).
func DefaultConfig() Config {
	return Config{
		MinPublisherDurationMS: 8000,
		MinVisits:              1,
		ScoreDomain:            1.0 / 30000.0,
		AllowNonVerified:       true,
		AllowVideos:            true,
		RegistryRefreshSeconds: 12 * 60 * 60,
		RegistryRetryMinSecs:   300,
		RegistryRetryMaxSecs:   3600,
		BallotBudgetDefault:    100,
		DataDir:                "./ledger-data",
	}
}

// Load loads the configuration from path, writing a default file on first run
// exactly as the teacher's config.Load does for its validator key.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func createDefault(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, fmt.Errorf("config: encode default: %w", err)
	}
	return &cfg, nil
}
