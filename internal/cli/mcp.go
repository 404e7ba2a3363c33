package cli

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/0xcro3dile/docguard/internal/infrastructure/mcp"
)

// NewMCPCmd creates the 'mcp' command serving the chat tool over stdio.
func NewMCPCmd(configPath *string, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server (stdio transport)",
		Long: `Expose the chat pipeline as a single MCP tool named "chat".
Logs go to stderr; stdout carries the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			return mcpserver.NewServer(a.chat, version, a.cfg.Cloud.DefaultAllow).ServeStdio()
		},
	}
}
