/*
Copyright © 2026 Pressroom Labs <oss@pressroomhq.dev>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pressroomhq/scrubpress/internal/validate"
)

// previewCmd renders the diff a publish would produce. It is always safe to
// run: no network, no history operation, and it completes even when
// validation would block a live publish.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the diff a publish would produce",
	Long: `Preview runs the full sanitizing transform against a disposable snapshot
and renders a unified diff against the original tree. Validation findings are
reported alongside the diff but never fail the command. Run preview first to
discover failing rules before attempting a live publish.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	p, err := newPipeline(cmd)
	if err != nil {
		return err
	}

	report, vres, err := p.Preview()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report.Render(out)

	if !vres.Passed {
		fmt.Fprintln(out)
		validate.Render(out, vres)
		fmt.Fprintln(out, "Note: a live publish would be rejected until the findings above are resolved.")
	}
	return nil
}
