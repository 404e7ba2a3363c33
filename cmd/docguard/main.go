/*
Package main is the entry point for the docguard CLI.

docguard answers requests over approved local folders. Document content and
sensitive requests never leave the machine; a sanitized generic question may be
sent to a knowledge service only with explicit consent.

Usage:

	docguard [command]

Available Commands:

	serve       Run the HTTP API
	ask         Run one request against local workspace folders
	mcp         Run the MCP server (stdio transport)
	audit       List recent routing decisions
	version     Show version information
*/
package main

import (
	"fmt"
	"os"

	"github.com/0xcro3dile/docguard/internal/cli"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cli.NewRootCmd(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
