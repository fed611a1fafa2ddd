/*
Copyright © 2026 Pressroom Labs <oss@pressroomhq.dev>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pressroomhq/scrubpress/internal/pipeline"
	"github.com/pressroomhq/scrubpress/internal/publish"
	"github.com/pressroomhq/scrubpress/pkg/buildinfo"
	"github.com/pressroomhq/scrubpress/pkg/config"
	"github.com/pressroomhq/scrubpress/pkg/exitcode"
	"github.com/pressroomhq/scrubpress/pkg/logger"
	"github.com/pressroomhq/scrubpress/pkg/templates"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scrubpress",
	Short: "Publish a sanitized snapshot of a private repository",
	Long: `Scrubpress takes a private, fully-tracked working tree and produces a
sanitized snapshot safe to push to a separate public remote.

Each run is single-pass: snapshot the tracked files, strip private marker
regions, apply ordered scrub rules, reset designated files to canonical
templates, validate that no forbidden term survived, then publish.

Examples:
   scrubpress preview    # Show what a publish would change
   scrubpress check      # Validate only, no diff, no push
   scrubpress publish    # Force-push the sanitized snapshot`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		initializeLogger(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the publish config (default: scrubpress.{yaml,json} in the target dir)")
	rootCmd.PersistentFlags().StringP("target", "C", ".", "Source tree to publish from")
	rootCmd.PersistentFlags().String("log-level", "info", "Set log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	rootCmd.Version = buildinfo.BinaryVersion
	rootCmd.SetVersionTemplate("scrubpress {{.Version}}\n")
}

// Execute runs the CLI and maps error classes to the contract exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		code := classify(err)
		logger.Error("command failed",
			logger.Err(err),
			logger.Int("exit_code", code),
			logger.String("class", exitcode.String(code)))
		os.Exit(code)
	}
}

// classify maps the pipeline's error taxonomy onto exit codes. Anything not
// otherwise classified came out of snapshot or transform I/O.
func classify(err error) int {
	if _, ok := pipeline.AsValidationError(err); ok {
		return exitcode.ValidationFailure
	}
	if config.IsConfigError(err) {
		return exitcode.ConfigError
	}
	if publish.IsPushError(err) {
		return exitcode.PublishError
	}
	return exitcode.IOError
}

// newPipeline builds a pipeline run from the persistent flags.
func newPipeline(cmd *cobra.Command) (*pipeline.Pipeline, error) {
	configPath, _ := cmd.Flags().GetString("config")
	target, _ := cmd.Flags().GetString("target")

	cfg, err := config.Load(configPath, target)
	if err != nil {
		return nil, err
	}
	catalog, err := templates.Load(cfg.TemplateCatalog)
	if err != nil {
		return nil, &config.Error{Reason: "failed to load template catalog", Err: err}
	}
	return pipeline.New(target, cfg, catalog)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	levelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	logger.Initialize(logger.Config{
		Level:     logger.ParseLevel(levelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "scrubpress",
	})
}
