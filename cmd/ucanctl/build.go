package main

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/yeying-community/ucan/internal/infrastructure/config"
	"github.com/yeying-community/ucan/pkg/ucan"
)

func runBuild(args []string) {
	fs := newFlagSet("ucanctl build")
	configFile := fs.StringP("config", "c", "", "Config file path")
	keyType := fs.String("key-type", "", "Issuer key type: ed25519 or secp256k1 (overrides config)")
	keyFile := fs.String("key-file", "", "Issuer private key file, hex-encoded (overrides config)")
	audience := fs.String("audience", "", "Audience DID")
	resource := fs.String("resource", "", "Capability resource URI")
	ability := fs.String("ability", "", "Capability ability path")
	caveat := fs.String("caveat", "[{}]", "Capability caveat, a JSON array of covering rules")
	expiration := fs.Int64("expiration", 0, "Unix expiration timestamp; 0 means unset")
	lifetime := fs.Int64("lifetime", 0, "Lifetime in seconds from now; ignored if --expiration is set")
	notBefore := fs.Int64("not-before", 0, "Unix not-before timestamp; 0 means unset")
	witnessFile := fs.String("witness", "", "Proof JWT file to record as a witnessed proof")
	delegateFile := fs.String("delegate-from", "", "Proof JWT file to delegate from (records proof + a blanket redelegation capability)")
	inlineProof := fs.Bool("inline-proof", false, "Embed the witnessed/delegated-from proof's JWT inline in facts[\"prf\"]")
	out := fs.String("out", "", "Write the signed token to this file; default stdout only")
	help := fs.BoolP("help", "h", false, "Show help")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *help {
		fmt.Println("Usage: ucanctl build --audience <did> --resource <uri> --ability <path> [flags]")
		fs.PrintDefaults()
		return
	}

	cfg, err := config.NewLoader().Load(*configFile, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		os.Exit(1)
	}
	if *keyType != "" {
		cfg.Signer.KeyType = *keyType
	}
	if *keyFile != "" {
		cfg.Signer.KeyFile = *keyFile
	}
	if cfg.Signer.KeyFile == "" {
		fmt.Fprintln(os.Stderr, "build: a --key-file (or signer.key_file in config) is required")
		os.Exit(1)
	}
	if *audience == "" || *resource == "" || *ability == "" {
		fmt.Fprintln(os.Stderr, "build: --audience, --resource and --ability are required")
		os.Exit(1)
	}

	log := mustLogger(cfg)
	defer log.Sync()

	issuer, err := loadKeyMaterial(cfg.Signer.KeyType, cfg.Signer.KeyFile)
	if err != nil {
		log.Error("failed to load issuer key material", zap.Error(err))
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		os.Exit(1)
	}
	log.Debug("loaded issuer key material", zap.String("issuer", issuer.DID()), zap.String("key_type", cfg.Signer.KeyType))

	b := ucan.NewBuilder(issuer).
		ForAudience(*audience).
		ClaimingCapability(*resource, *ability, json.RawMessage(*caveat))
	if *expiration != 0 {
		b = b.WithExpiration(*expiration)
	} else if *lifetime != 0 {
		b = b.WithLifetime(*lifetime)
	}
	if *notBefore != 0 {
		b = b.WithNotBefore(*notBefore)
	}
	if *inlineProof {
		b = b.WithInlineProofFacts(true)
	}

	switch {
	case *delegateFile != "":
		proofJWT, err := readTokenFile(*delegateFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "build: %v\n", err)
			os.Exit(1)
		}
		if b, err = b.DelegatingFrom(proofJWT); err != nil {
			fmt.Fprintf(os.Stderr, "build: %v\n", err)
			os.Exit(1)
		}
	case *witnessFile != "":
		proofJWT, err := readTokenFile(*witnessFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "build: %v\n", err)
			os.Exit(1)
		}
		if b, err = b.WitnessedBy(proofJWT); err != nil {
			fmt.Fprintf(os.Stderr, "build: %v\n", err)
			os.Exit(1)
		}
	}

	_, jwt, err := b.Sign()
	if err != nil {
		log.Error("failed to build and sign token", zap.Error(err))
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		os.Exit(1)
	}
	log.Info("signed token",
		zap.String("issuer", issuer.DID()),
		zap.String("audience", *audience),
		zap.String("resource", *resource),
		zap.String("ability", *ability))

	fmt.Println(jwt)
	if *out != "" {
		if err := os.WriteFile(*out, []byte(jwt+"\n"), 0o644); err != nil {
			log.Error("failed to write output file", zap.String("path", *out), zap.Error(err))
			fmt.Fprintf(os.Stderr, "build: failed to write %s: %v\n", *out, err)
			os.Exit(1)
		}
	}
}

func readTokenFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading token file %s: %w", path, err)
	}
	return trimNewline(string(data)), nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
