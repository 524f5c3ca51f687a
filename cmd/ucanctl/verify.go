package main

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/yeying-community/ucan/internal/infrastructure/config"
	"github.com/yeying-community/ucan/pkg/ucan"
)

func runVerify(args []string) {
	fs := newFlagSet("ucanctl verify")
	configFile := fs.StringP("config", "c", "", "Config file path")
	tokenFile := fs.String("token", "", "Token JWT file to verify")
	maxDepth := fs.Int("max-depth", 0, "Maximum proof chain depth (overrides config)")
	requiredResource := fs.String("required-resource", "", "Required capability resource URI, supports {field} facts substitution")
	requiredAbility := fs.String("required-ability", "", "Required capability ability path")
	requiredCaveat := fs.String("required-caveat", "[{}]", "Required capability caveat")
	requiredOriginator := fs.String("required-originator", "", "Required originator DID")
	seedProof := fs.StringArray("seed-proof", nil, "Proof JWT file to preload into the verify store (repeatable)")
	help := fs.BoolP("help", "h", false, "Show help")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *help {
		fmt.Println("Usage: ucanctl verify --token <file> [flags]")
		fs.PrintDefaults()
		return
	}

	cfg, err := config.NewLoader().Load(*configFile, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		os.Exit(1)
	}
	if *requiredResource != "" {
		cfg.Validator.RequiredResource = *requiredResource
	}
	if *requiredAbility != "" {
		cfg.Validator.RequiredAbility = *requiredAbility
	}
	if *requiredOriginator != "" {
		cfg.Validator.RequiredOriginator = *requiredOriginator
	}
	if *maxDepth != 0 {
		cfg.Validator.MaxDepth = *maxDepth
	}
	if *requiredCaveat != "" {
		cfg.Validator.RequiredCaveat = *requiredCaveat
	}
	for _, path := range *seedProof {
		cfg.Store.SeedProofs = append(cfg.Store.SeedProofs, path)
	}

	if *tokenFile == "" {
		fmt.Fprintln(os.Stderr, "verify: --token is required")
		os.Exit(1)
	}

	log := mustLogger(cfg)
	defer log.Sync()

	jwt, err := readTokenFile(*tokenFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		os.Exit(1)
	}

	st := ucan.NewMemoryStore()
	for _, path := range cfg.Store.SeedProofs {
		proofJWT, err := readTokenFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "verify: %v\n", err)
			os.Exit(1)
		}
		if _, err := st.WriteToken(proofJWT); err != nil {
			fmt.Fprintf(os.Stderr, "verify: seeding %s: %v\n", path, err)
			os.Exit(1)
		}
		log.Debug("seeded proof into verify store", zap.String("path", path))
	}

	resp, err := ucan.Verify(jwt, ucan.VerifyOptions{
		Store:              st,
		AcceptedVersions:   cfg.Validator.AcceptedVersions,
		MaxDepth:           cfg.Validator.MaxDepth,
		RequiredResource:   cfg.Validator.RequiredResource,
		RequiredAbility:    cfg.Validator.RequiredAbility,
		RequiredCaveat:     json.RawMessage(cfg.Validator.RequiredCaveat),
		RequiredOriginator: cfg.Validator.RequiredOriginator,
		Logger:             log,
	})
	if err != nil {
		log.Info("verify failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "verify: FAILED: %v\n", err)
		os.Exit(1)
	}
	log.Info("verify succeeded", zap.Int("chain_length", len(resp.ChainCIDs)), zap.Int("capabilities", len(resp.Capabilities)))

	fmt.Println("verify: OK")
	fmt.Printf("chain: %d token(s): %v\n", len(resp.ChainCIDs), resp.ChainCIDs)
	fmt.Println("capabilities:")
	for _, c := range resp.Capabilities {
		fmt.Printf("  %s #%s  window=[%s,%s)  originators=%v\n",
			c.View.Resource, c.View.Ability, formatBound(c.NotBefore), formatBound(c.Expiration), c.OriginatorsSlice())
	}
	if len(resp.Facts) > 0 {
		fmt.Println("facts:")
		for k, v := range resp.Facts {
			fmt.Printf("  %s: %s\n", k, string(v))
		}
	}
}

func formatBound(b *int64) string {
	if b == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *b)
}
