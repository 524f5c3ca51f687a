package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Loader loads and validates a Config from file, flags, and environment,
// in that override order.
type Loader struct {
	defaultConfig *Config
}

// NewLoader constructs a Loader seeded with DefaultConfig.
func NewLoader() *Loader {
	return &Loader{defaultConfig: DefaultConfig()}
}

// Load assembles the final Config: defaults, then file, then flags, then
// environment, then validation.
func (l *Loader) Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	cfg := l.defaultConfig

	if configFile != "" {
		if err := l.LoadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if flags != nil {
		l.overrideFromFlags(cfg, flags)
	}

	l.overrideFromEnv(cfg)

	if err := l.validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFromFile merges a YAML config file into cfg.
func (l *Loader) LoadFromFile(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (l *Loader) overrideFromFlags(cfg *Config, flags *pflag.FlagSet) {
	if flags.Changed("key-type") {
		cfg.Signer.KeyType, _ = flags.GetString("key-type")
	}
	if flags.Changed("key-file") {
		cfg.Signer.KeyFile, _ = flags.GetString("key-file")
	}
	if flags.Changed("max-depth") {
		cfg.Validator.MaxDepth, _ = flags.GetInt("max-depth")
	}
	if flags.Changed("required-resource") {
		cfg.Validator.RequiredResource, _ = flags.GetString("required-resource")
	}
	if flags.Changed("required-ability") {
		cfg.Validator.RequiredAbility, _ = flags.GetString("required-ability")
	}
	if flags.Changed("required-originator") {
		cfg.Validator.RequiredOriginator, _ = flags.GetString("required-originator")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
}

func (l *Loader) overrideFromEnv(cfg *Config) {
	if v := os.Getenv("UCANCTL_KEY_TYPE"); v != "" {
		cfg.Signer.KeyType = v
	}
	if v := os.Getenv("UCANCTL_KEY_FILE"); v != "" {
		cfg.Signer.KeyFile = v
	}
	if v := os.Getenv("UCANCTL_MAX_DEPTH"); v != "" {
		if depth, err := strconv.Atoi(v); err == nil {
			cfg.Validator.MaxDepth = depth
		}
	}
	if v := os.Getenv("UCANCTL_REQUIRED_RESOURCE"); v != "" {
		cfg.Validator.RequiredResource = v
	}
	if v := os.Getenv("UCANCTL_REQUIRED_ABILITY"); v != "" {
		cfg.Validator.RequiredAbility = v
	}
	if v := os.Getenv("UCANCTL_REQUIRED_ORIGINATOR"); v != "" {
		cfg.Validator.RequiredOriginator = v
	}
	if v := os.Getenv("UCANCTL_ACCEPTED_VERSIONS"); v != "" {
		cfg.Validator.AcceptedVersions = strings.Split(v, ",")
	}
	if v := os.Getenv("UCANCTL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func (l *Loader) validate(cfg *Config) error {
	if err := l.validateSigner(cfg); err != nil {
		return fmt.Errorf("signer config: %w", err)
	}
	if err := l.validateStore(cfg); err != nil {
		return fmt.Errorf("store config: %w", err)
	}
	if err := l.validateValidator(cfg); err != nil {
		return fmt.Errorf("validator config: %w", err)
	}
	return nil
}

func (l *Loader) validateSigner(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Signer.KeyType)) {
	case "ed25519", "secp256k1":
	case "":
	default:
		return fmt.Errorf("signer.key_type must be 'ed25519' or 'secp256k1', got %q", cfg.Signer.KeyType)
	}
	return nil
}

func (l *Loader) validateStore(cfg *Config) error {
	if strings.ToLower(strings.TrimSpace(cfg.Store.Type)) != "memory" {
		return fmt.Errorf("store.type must be 'memory', got %q", cfg.Store.Type)
	}
	for _, path := range cfg.Store.SeedProofs {
		if path == "" {
			return errors.New("store.seed_proofs entries must not be empty")
		}
	}
	return nil
}

func (l *Loader) validateValidator(cfg *Config) error {
	if cfg.Validator.MaxDepth <= 0 {
		return errors.New("validator.max_depth must be positive")
	}
	if len(cfg.Validator.AcceptedVersions) == 0 {
		return errors.New("validator.accepted_versions must not be empty")
	}
	return nil
}
