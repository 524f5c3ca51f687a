package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/yeying-community/ucan/internal/infrastructure/config"
	"github.com/yeying-community/ucan/internal/infrastructure/logger"
)

var (
	version   = "0.10.0"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "keygen":
		runKeygen(args)
	case "build":
		runBuild(args)
	case "verify":
		runVerify(args)
	case "inspect":
		runInspect(args)
	case "version", "-v", "--version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "ucanctl: unknown subcommand %q\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

// newFlagSet returns a pflag.FlagSet in ContinueOnError mode with pflag's
// own usage output silenced; each subcommand defines and handles its own
// -h/--help flag.
func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.Usage = func() {}
	return fs
}

// mustLogger constructs the zap.Logger cfg.Log describes, the way
// cmd/server wires its logger out of the loaded config; a malformed log
// config is itself a fatal startup error.
func mustLogger(cfg *config.Config) *zap.Logger {
	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ucanctl: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return log
}

func printVersion() {
	fmt.Printf("ucanctl\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
}

func printUsage() {
	fmt.Println("ucanctl - UCAN capability token tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ucanctl <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  keygen    Generate a new signing key and print its DID")
	fmt.Println("  build     Build and sign a UCAN token")
	fmt.Println("  verify    Verify a UCAN token and its proof chain")
	fmt.Println("  inspect   Decode a UCAN token without verifying it")
	fmt.Println("  version   Show version information")
	fmt.Println()
	fmt.Println("Run 'ucanctl <command> --help' for flags specific to a command.")
}
