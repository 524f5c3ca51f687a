package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/yeying-community/ucan/pkg/ucan"
)

func runKeygen(args []string) {
	fs := newFlagSet("ucanctl keygen")
	keyType := fs.String("type", "ed25519", "Key type: ed25519 or secp256k1")
	outFile := fs.String("out", "", "Write the raw private key to this file (hex-encoded); default stdout only")
	help := fs.BoolP("help", "h", false, "Show help")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *help {
		fmt.Println("Usage: ucanctl keygen [--type ed25519|secp256k1] [--out keyfile]")
		fs.PrintDefaults()
		return
	}

	var didStr, rawHex string
	switch strings.ToLower(*keyType) {
	case "ed25519":
		_, priv, err := ed25519.GenerateKey(nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
			os.Exit(1)
		}
		mat, err := ucan.NewEd25519(priv)
		if err != nil {
			fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
			os.Exit(1)
		}
		didStr = mat.DID()
		rawHex = hex.EncodeToString(priv)
	case "secp256k1":
		priv, err := crypto.GenerateKey()
		if err != nil {
			fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
			os.Exit(1)
		}
		mat := ucan.NewSecp256k1(priv)
		didStr = mat.DID()
		rawHex = hex.EncodeToString(crypto.FromECDSA(priv))
	default:
		fmt.Fprintf(os.Stderr, "keygen: unsupported key type %q\n", *keyType)
		os.Exit(1)
	}

	fmt.Printf("did: %s\n", didStr)
	fmt.Printf("key: %s\n", rawHex)

	if *outFile != "" {
		if err := os.WriteFile(*outFile, []byte(rawHex+"\n"), 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "keygen: failed to write %s: %v\n", *outFile, err)
			os.Exit(1)
		}
	}
}

// loadKeyMaterial reads a hex-encoded raw private key file and wraps it as
// KeyMaterial per keyType ("ed25519" or "secp256k1").
func loadKeyMaterial(keyType, keyFile string) (ucan.KeyMaterial, error) {
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	raw, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("decoding key file: %w", err)
	}

	switch strings.ToLower(keyType) {
	case "", "ed25519":
		if len(raw) != ed25519.PrivateKeySize {
			return nil, fmt.Errorf("ed25519 key file must contain %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
		}
		return ucan.NewEd25519(ed25519.PrivateKey(raw))
	case "secp256k1":
		priv, err := crypto.ToECDSA(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding secp256k1 key: %w", err)
		}
		return ucan.NewSecp256k1(priv), nil
	default:
		return nil, fmt.Errorf("unsupported key type %q", keyType)
	}
}
