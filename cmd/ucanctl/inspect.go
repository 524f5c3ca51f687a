package main

import (
	"fmt"
	"os"

	"github.com/yeying-community/ucan/internal/codec"
	"github.com/yeying-community/ucan/pkg/ucan"
)

func runInspect(args []string) {
	fs := newFlagSet("ucanctl inspect")
	tokenFile := fs.String("token", "", "Token JWT file to decode")
	help := fs.BoolP("help", "h", false, "Show help")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *help {
		fmt.Println("Usage: ucanctl inspect --token <file>")
		fs.PrintDefaults()
		return
	}
	if *tokenFile == "" {
		fmt.Fprintln(os.Stderr, "inspect: --token is required")
		os.Exit(1)
	}

	jwt, err := readTokenFile(*tokenFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inspect: %v\n", err)
		os.Exit(1)
	}

	tok, err := ucan.Decode(jwt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inspect: decode failed: %v\n", err)
		os.Exit(1)
	}
	cid, err := codec.DeriveCID(jwt, codec.DefaultHasher)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inspect: cid: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("cid:       %s\n", cid)
	fmt.Printf("version:   %s\n", tok.Version)
	fmt.Printf("algorithm: %s\n", tok.Algorithm)
	fmt.Printf("issuer:    %s\n", tok.Issuer)
	fmt.Printf("audience:  %s\n", tok.Audience)
	fmt.Printf("expires:   %s\n", formatBound(tok.Expiration))
	fmt.Printf("notBefore: %s\n", formatBound(tok.NotBefore))
	if tok.Nonce != "" {
		fmt.Printf("nonce:     %s\n", tok.Nonce)
	}
	fmt.Printf("proofs:    %v\n", tok.Proofs)
	fmt.Println("capabilities:")
	for _, c := range tok.Capabilities {
		fmt.Printf("  %s #%s  %s\n", c.Resource, c.Ability, string(c.Caveat))
	}
	if len(tok.Facts) > 0 {
		fmt.Println("facts:")
		for _, f := range tok.Facts {
			fmt.Printf("  %s: %s\n", f.Key, string(f.Value))
		}
	}
}
