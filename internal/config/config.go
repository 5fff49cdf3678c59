package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"BookTriage/internal/domain"
)

const (
	configPathEnv   = "BOOKTRIAGE_CONFIG"
	baseDirEnv      = "BOOKTRIAGE_BASE_DIR"
	logLevelEnv     = "BOOKTRIAGE_LOG_LEVEL"
	ledgerDriverEnv = "BOOKTRIAGE_LEDGER_DRIVER"
	ledgerDSNEnv    = "BOOKTRIAGE_LEDGER_DSN"

	// LedgerDisabled turns transition recording off.
	LedgerDisabled = "none"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig   `yaml:"logging"`
	Partitions PartitionConfig `yaml:"partitions"`
	Rules      RulesConfig     `yaml:"rules"`
	Approver   ApproverConfig  `yaml:"approver"`
	Review     ReviewConfig    `yaml:"review"`
	Triage     TriageConfig    `yaml:"triage"`
	Ledger     LedgerConfig    `yaml:"ledger"`
}

// LoggingConfig selects slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PartitionConfig locates the partition directories. Relative dirs are
// resolved against BaseDir.
type PartitionConfig struct {
	BaseDir    string `yaml:"baseDir"`
	Candidate  string `yaml:"candidate"`
	Suspicious string `yaml:"suspicious"`
	Nonpublish string `yaml:"nonpublish"`
	Published  string `yaml:"published"`
}

// RulesConfig points at an optional replacement rule set.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// ApproverConfig overrides the trusted domain allowlist when Domains is set.
type ApproverConfig struct {
	Domains []string `yaml:"domains"`
}

// ReviewConfig maps reviewer keys to commands.
type ReviewConfig struct {
	PublishKey string `yaml:"publishKey"`
	RejectKey  string `yaml:"rejectKey"`
	SkipKey    string `yaml:"skipKey"`
	QuitKey    string `yaml:"quitKey"`
	Color      *bool  `yaml:"color"`
}

// TriageConfig tunes the batch stage.
type TriageConfig struct {
	ProgressEvery int `yaml:"progressEvery"`
}

// LedgerConfig describes the transition audit database.
type LedgerConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Enabled reports whether transitions should be recorded.
func (l LedgerConfig) Enabled() bool {
	return l.Driver != "" && l.Driver != LedgerDisabled
}

// LedgerDSN resolves a relative sqlite file against the partition base dir.
func (c Config) LedgerDSN() string {
	dsn := c.Ledger.DSN
	if c.Ledger.Driver != "sqlite" || dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return dsn
	}
	return c.Partitions.resolve(dsn)
}

// Roots resolves every partition to a directory.
func (p PartitionConfig) Roots() map[domain.Partition]string {
	return map[domain.Partition]string{
		domain.PartitionCandidate:  p.resolve(p.Candidate),
		domain.PartitionSuspicious: p.resolve(p.Suspicious),
		domain.PartitionNonpublish: p.resolve(p.Nonpublish),
		domain.PartitionPublished:  p.resolve(p.Published),
	}
}

func (p PartitionConfig) resolve(dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(p.BaseDir, dir)
}

// Load reads YAML configuration (if present) and applies environment overrides.
// An explicit path wins over the environment variable.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(baseDirEnv); v != "" {
		c.Partitions.BaseDir = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(ledgerDriverEnv); v != "" {
		c.Ledger.Driver = v
	}

	if v := os.Getenv(ledgerDSNEnv); v != "" {
		c.Ledger.DSN = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Partitions.BaseDir != "" {
		base.Partitions.BaseDir = override.Partitions.BaseDir
	}
	if override.Partitions.Candidate != "" {
		base.Partitions.Candidate = override.Partitions.Candidate
	}
	if override.Partitions.Suspicious != "" {
		base.Partitions.Suspicious = override.Partitions.Suspicious
	}
	if override.Partitions.Nonpublish != "" {
		base.Partitions.Nonpublish = override.Partitions.Nonpublish
	}
	if override.Partitions.Published != "" {
		base.Partitions.Published = override.Partitions.Published
	}

	if override.Rules.Path != "" {
		base.Rules = override.Rules
	}

	if override.Approver.Domains != nil {
		base.Approver.Domains = override.Approver.Domains
	}

	if override.Review.PublishKey != "" {
		base.Review.PublishKey = override.Review.PublishKey
	}
	if override.Review.RejectKey != "" {
		base.Review.RejectKey = override.Review.RejectKey
	}
	if override.Review.SkipKey != "" {
		base.Review.SkipKey = override.Review.SkipKey
	}
	if override.Review.QuitKey != "" {
		base.Review.QuitKey = override.Review.QuitKey
	}
	if override.Review.Color != nil {
		base.Review.Color = override.Review.Color
	}

	if override.Triage.ProgressEvery > 0 {
		base.Triage.ProgressEvery = override.Triage.ProgressEvery
	}

	if override.Ledger.Driver != "" {
		base.Ledger.Driver = override.Ledger.Driver
	}
	if override.Ledger.DSN != "" {
		base.Ledger.DSN = override.Ledger.DSN
	}

	return base
}

func defaultConfig() Config {
	colorOn := true
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Partitions: PartitionConfig{
			BaseDir:    ".",
			Candidate:  "hugo-blog-content-candidate",
			Suspicious: "hugo-blog-content-suspicious-candidate",
			Nonpublish: "hugo-blog-content-nonpublish",
			Published:  filepath.Join("hugo-blog", "content", "posts"),
		},
		Review: ReviewConfig{
			PublishKey: "1",
			RejectKey:  "0",
			SkipKey:    "s",
			QuitKey:    "q",
			Color:      &colorOn,
		},
		Triage: TriageConfig{ProgressEvery: 500},
		Ledger: LedgerConfig{Driver: "sqlite", DSN: "booktriage-ledger.db"},
	}
}
