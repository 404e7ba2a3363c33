package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/docguard/internal/domain/entities"
)

// NewAuditCmd creates the 'audit' command listing recent decisions.
func NewAuditCmd(configPath *string) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent routing decisions",
		Long:  `Show the stored evidence trail of recent requests. Records never contain request or document text.`,
		Example: `  docguard audit
  docguard audit --limit 5 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be positive")
			}
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.chat.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("reading audit records: %w", err)
			}
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			total, err := a.chat.AuditCount(cmd.Context())
			if err != nil {
				return fmt.Errorf("counting audit records: %w", err)
			}
			printAudit(cmd.OutOrStdout(), records, total)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records to show")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func printAudit(w io.Writer, records []entities.AuditRecord, total int) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No audit records.")
		return
	}
	fmt.Fprintf(w, "Recent requests (%d of %d):\n\n", len(records), total)
	for _, r := range records {
		fmt.Fprintf(w, "  %s  %s\n", r.CreatedAt.Local().Format(time.DateTime), r.ID)
		fmt.Fprintf(w, "    Intent:    %s\n", r.Intent)
		fmt.Fprintf(w, "    Route:     %s (cloud used: %t)\n", r.Route, r.UsedCloud)
		fmt.Fprintf(w, "    Sensitive: %t\n", r.Sensitive)
		for _, e := range r.Evidence {
			fmt.Fprintf(w, "    - %s\n", formatEvidence(e))
		}
		fmt.Fprintln(w)
	}
}

func formatEvidence(e entities.Evidence) string {
	s := e.Source
	if e.Note != "" {
		s += ": " + e.Note
	}
	if e.Path != "" {
		s += " (" + e.Path + ")"
	}
	return s
}
