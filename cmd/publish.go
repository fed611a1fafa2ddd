/*
Copyright © 2026 Pressroom Labs <oss@pressroomhq.dev>
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pressroomhq/scrubpress/internal/pipeline"
	"github.com/pressroomhq/scrubpress/internal/validate"
)

// publishCmd runs the full pipeline and force-pushes the sanitized snapshot.
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Validate and force-push the sanitized snapshot",
	Long: `Publish commits the transformed snapshot as a brand-new, parentless
history and force-pushes it to the configured remote, unconditionally
overwriting whatever history exists on the public branch.

Publishing is refused while any configured find-term or blocklisted term
survives transformation; the complete findings list is printed so the
configuration can be extended in one pass.`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().Bool("json-result", false, "Print the publish result as JSON")
}

func runPublish(cmd *cobra.Command, _ []string) error {
	p, err := newPipeline(cmd)
	if err != nil {
		return err
	}

	result, err := p.Publish()
	if err != nil {
		if ve, ok := pipeline.AsValidationError(err); ok {
			validate.Render(cmd.ErrOrStderr(), ve.Result)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if jsonResult, _ := cmd.Flags().GetBool("json-result"); jsonResult {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(out, string(data))
		return nil
	}
	fmt.Fprintf(out, "Published %d file(s) to %s/%s (%s)\n",
		result.FileCount, result.Remote, result.Branch, result.CommitHash[:12])
	return nil
}
