package config

// Config is ucanctl's full configuration surface.
type Config struct {
	Signer    SignerConfig    `yaml:"signer"`
	Store     StoreConfig     `yaml:"store"`
	Validator ValidatorConfig `yaml:"validator"`
	Log       LogConfig       `yaml:"log"`
}

// SignerConfig names the key material backing a `build` invocation.
type SignerConfig struct {
	KeyType string `yaml:"key_type"` // "ed25519" or "secp256k1"
	KeyFile string `yaml:"key_file"` // hex-encoded raw private key, for either key type
}

// StoreConfig configures the proof store a `verify` invocation consults.
// Only an in-memory store ships with this core (spec §4.5); SeedProofs
// names JWT files to preload it with before resolving a chain.
type StoreConfig struct {
	Type       string   `yaml:"type"`
	SeedProofs []string `yaml:"seed_proofs"`
}

// ValidatorConfig configures chain validation and the required-capability
// check for a `verify` invocation.
type ValidatorConfig struct {
	AcceptedVersions   []string `yaml:"accepted_versions"`
	MaxDepth           int      `yaml:"max_depth"`
	RequiredResource   string   `yaml:"required_resource"`
	RequiredAbility    string   `yaml:"required_ability"`
	RequiredCaveat     string   `yaml:"required_caveat"`
	RequiredOriginator string   `yaml:"required_originator"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level   string   `yaml:"level"`
	Format  string   `yaml:"format"`
	Colors  bool     `yaml:"colors"`
	Outputs []string `yaml:"outputs"`
}

// DefaultConfig returns ucanctl's baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Signer: SignerConfig{
			KeyType: "ed25519",
		},
		Store: StoreConfig{
			Type: "memory",
		},
		Validator: ValidatorConfig{
			AcceptedVersions: []string{"0.10.0", "0.10.0-canary"},
			MaxDepth:         32,
		},
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Colors:  true,
			Outputs: []string{"stderr"},
		},
	}
}
