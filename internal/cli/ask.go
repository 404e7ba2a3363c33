package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/0xcro3dile/docguard/internal/domain/entities"
)

const renderWidth = 100

// NewAskCmd creates the 'ask' command running one request from the terminal.
func NewAskCmd(configPath *string) *cobra.Command {
	var (
		dirs       []string
		file       string
		cloud      bool
		render     bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "ask <text>",
		Short: "Run one request against local workspace folders",
		Example: `  docguard ask "summarize the quarterly report" --dir ~/Documents
  docguard ask "tailor my resume for a cybersecurity role" --dir ~/cv --file ~/cv/resume.docx --cloud
  docguard ask "hi" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			allowCloud := a.cfg.Cloud.DefaultAllow
			if cmd.Flags().Changed("cloud") {
				allowCloud = cloud
			}
			req := entities.Request{
				UserText:      strings.Join(args, " "),
				AllowCloud:    allowCloud,
				WorkspaceDirs: dirs,
			}
			if file != "" {
				req.PreferredFiles = []string{file}
			}

			resp, err := a.chat.Process(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case jsonOutput:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			case render:
				return printRendered(out, resp)
			}
			printResponse(out, resp)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&dirs, "dir", "d", nil, "Approved workspace folder (repeatable)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Selected file inside an approved folder")
	cmd.Flags().BoolVar(&cloud, "cloud", false, "Allow one sanitized external knowledge call")
	cmd.Flags().BoolVarP(&render, "render", "r", false, "Render the answer as terminal markdown")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output the full response as JSON")

	return cmd
}

// printResponse writes the answer followed by the routing trail.
func printResponse(w io.Writer, resp *entities.Response) {
	fmt.Fprintln(w, strings.TrimRight(resp.FinalText, "\n"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, trailer(resp))
}

func trailer(resp *entities.Response) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Route: %s | cloud used: %t | sensitive: %t\n", resp.Route, resp.UsedCloud, resp.SensitiveDetected)
	if resp.SanitizedCloudQuery != nil {
		fmt.Fprintf(&sb, "Sent: %s\n", *resp.SanitizedCloudQuery)
	}
	sb.WriteString("Evidence:\n")
	for _, e := range resp.Evidence {
		fmt.Fprintf(&sb, "- %s\n", formatEvidence(e))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// printRendered renders the answer with glamour; the trailer stays plain.
func printRendered(w io.Writer, resp *entities.Response) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	rendered, err := r.Render(resp.FinalText)
	if err != nil {
		return fmt.Errorf("rendering answer: %w", err)
	}
	fmt.Fprint(w, rendered)
	fmt.Fprintln(w, trailer(resp))
	return nil
}
