/*
Copyright © 2026 Pressroom Labs <oss@pressroomhq.dev>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pressroomhq/scrubpress/internal/pipeline"
	"github.com/pressroomhq/scrubpress/internal/validate"
)

// checkCmd validates the transformed snapshot without diffing or publishing.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the transform and validator without diffing or publishing",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	p, err := newPipeline(cmd)
	if err != nil {
		return err
	}

	vres, err := p.Check()
	if err != nil {
		return err
	}
	if !vres.Passed {
		validate.Render(cmd.ErrOrStderr(), vres)
		return &pipeline.ValidationError{Result: vres}
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Validation passed: no forbidden terms survive transformation.")
	return nil
}
