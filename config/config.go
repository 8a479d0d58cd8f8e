package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"okinoko_ido/sdk"
)

// Config holds the node configuration for running the launchpad contract.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Contract ContractConfig `yaml:"contract"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig selects the state backend.
type DatabaseConfig struct {
	Path string `yaml:"path"` // empty keeps state in memory
}

// HTTPConfig configures the gateway.
type HTTPConfig struct {
	Listen       string `yaml:"listen"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
}

// ContractConfig names the deployed contract and the values init is called
// with on a fresh database.
type ContractConfig struct {
	Address               string `yaml:"address"`
	Owner                 string `yaml:"owner"`
	TreasuryWallet        string `yaml:"treasury_wallet"`
	FeeDenominator        uint64 `yaml:"fee_denominator"`
	PublicAuctionCreation bool   `yaml:"public_auction_creation"`
	DefaultMerkleRoot     string `yaml:"default_merkle_root"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "data/okinoko_ido.db",
		},
		HTTP: HTTPConfig{
			Listen:       "127.0.0.1:8545",
			ReadTimeout:  "10s",
			WriteTimeout: "10s",
		},
		Contract: ContractConfig{
			Address:        "hash-0000000000000000000000000000000000000000000000000000000000000001",
			FeeDenominator: 10_000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. A missing file is not an error.
// Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides reads OKINOKO_IDO_* variables.
func (c *Config) applyEnvOverrides() error {
	if v, ok := os.LookupEnv("OKINOKO_IDO_DB"); ok {
		c.Database.Path = v
	}
	if v := os.Getenv("OKINOKO_IDO_LISTEN"); v != "" {
		c.HTTP.Listen = v
	}
	if v := os.Getenv("OKINOKO_IDO_CONTRACT"); v != "" {
		c.Contract.Address = v
	}
	if v := os.Getenv("OKINOKO_IDO_OWNER"); v != "" {
		c.Contract.Owner = v
	}
	if v := os.Getenv("OKINOKO_IDO_TREASURY"); v != "" {
		c.Contract.TreasuryWallet = v
	}
	if v := os.Getenv("OKINOKO_IDO_FEE_DENOMINATOR"); v != "" {
		den, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("OKINOKO_IDO_FEE_DENOMINATOR: %w", err)
		}
		c.Contract.FeeDenominator = den
	}
	if v := os.Getenv("OKINOKO_IDO_PUBLIC_CREATION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("OKINOKO_IDO_PUBLIC_CREATION: %w", err)
		}
		c.Contract.PublicAuctionCreation = b
	}
	if v := os.Getenv("OKINOKO_IDO_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate checks the values the node cannot start without.
func (c *Config) Validate() error {
	if sdk.Address(c.Contract.Address).Type() != sdk.AddressTypeContract || !sdk.Address(c.Contract.Address).IsValid() {
		return fmt.Errorf("contract.address %q is not a contract hash", c.Contract.Address)
	}
	for field, v := range map[string]string{
		"contract.owner":           c.Contract.Owner,
		"contract.treasury_wallet": c.Contract.TreasuryWallet,
	} {
		if v != "" && !sdk.Address(v).IsValid() {
			return fmt.Errorf("%s %q is not a valid address", field, v)
		}
	}
	if c.Contract.FeeDenominator == 0 {
		return fmt.Errorf("contract.fee_denominator must be positive")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q unknown", c.Logging.Level)
	}
	if _, err := time.ParseDuration(c.HTTP.ReadTimeout); err != nil {
		return fmt.Errorf("http.read_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.HTTP.WriteTimeout); err != nil {
		return fmt.Errorf("http.write_timeout: %w", err)
	}
	return nil
}

// InMemory reports whether state is kept in process only.
func (c *Config) InMemory() bool {
	return c.Database.Path == ""
}

// GetReadTimeout returns the HTTP read timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	d, err := time.ParseDuration(c.HTTP.ReadTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetWriteTimeout returns the HTTP write timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	d, err := time.ParseDuration(c.HTTP.WriteTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}
