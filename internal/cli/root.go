package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// BuildInfo is set from main via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCmd creates the docguard command tree.
func NewRootCmd(info BuildInfo) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "docguard",
		Short: "Privacy-routing document assistant",
		Long: `docguard answers requests over local workspace files.

Sensitive requests and all document content stay on this machine. With explicit
consent a single sanitized, generic question may be sent to a knowledge service,
and its answer is appended under its own heading.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.docguard/config.toml)")

	rootCmd.AddCommand(NewServeCmd(&configPath))
	rootCmd.AddCommand(NewAskCmd(&configPath))
	rootCmd.AddCommand(NewMCPCmd(&configPath, info.Version))
	rootCmd.AddCommand(NewAuditCmd(&configPath))
	rootCmd.AddCommand(NewVersionCmd(info))

	return rootCmd
}
