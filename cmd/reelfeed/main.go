// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// reelfeed serves a clip catalog and plays it as a vertical feed in the terminal.
//
// Usage:
//
//	reelfeed serve  [-f config.yaml]
//	reelfeed watch  [-f config.yaml]
//	reelfeed config validate -f config.yaml
//	reelfeed version
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ManuGH/reelfeed/internal/config"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}
	switch args[0] {
	case "serve":
		return runServe(args[1:], stderr)
	case "watch":
		return runWatch(args[1:], stderr)
	case "config":
		return runConfig(args[1:], stdout, stderr)
	case "version", "--version", "-version":
		fmt.Fprintf(stdout, "%s (commit: %s, built: %s)\n", version, commit, buildDate)
		return 0
	case "-h", "--help", "help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  reelfeed serve  [--file|-f config.yaml]   serve the catalog and its HLS playlists")
	fmt.Fprintln(w, "  reelfeed watch  [--file|-f config.yaml]   play the feed in the terminal")
	fmt.Fprintln(w, "  reelfeed config validate --file|-f config.yaml")
	fmt.Fprintln(w, "  reelfeed version")
}

// loadConfig parses the shared --file flag and loads the configuration.
func loadConfig(name string, args []string, stderr io.Writer) (config.AppConfig, int) {
	fs := flag.NewFlagSet("reelfeed "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return config.AppConfig{}, 2
	}

	path := strings.TrimSpace(file)
	cfg, err := config.NewLoader(path, version).Load()
	if err != nil {
		if path == "" {
			path = "environment"
		}
		fmt.Fprintf(stderr, "Configuration error in %s:\n  %v\n", path, err)
		return cfg, 1
	}
	return cfg, 0
}

func runConfig(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] != "validate" {
		printUsage(stderr)
		return 2
	}
	rest := args[1:]
	if len(rest) == 0 {
		fmt.Fprintln(stderr, "Error: --file is required")
		return 2
	}
	if _, code := loadConfig("config validate", rest, stderr); code != 0 {
		return code
	}
	fmt.Fprintln(stdout, "configuration is valid")
	return 0
}
