package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shelver/internal/migrate"
	"shelver/internal/preflight"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var targetSubdir string
	var originalGroup string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Move grouped source files into Title (Year) library folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root, err := ctx.libraryRoot()
			if err != nil {
				return err
			}

			checks := preflight.RunAll(cfg, root)
			if !preflight.AllPassed(checks) {
				fmt.Fprintln(cmd.OutOrStdout(), renderPreflight(checks))
				return fmt.Errorf("preflight checks failed for %s", root)
			}

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			runner, err := migrate.NewRunner(cfg, migrate.Options{
				LibraryRoot:   root,
				TargetSubdir:  targetSubdir,
				OriginalGroup: originalGroup,
				DryRun:        dryRun,
				ShowProgress:  stdoutIsTerminal(),
			}, logger)
			if err != nil {
				return err
			}

			summary, err := runner.Run(cmd.Context())
			if summary != nil {
				fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary, dryRun))
			}
			if err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d entries failed to move; see the log for details", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log intended actions without touching the filesystem")
	cmd.Flags().StringVar(&targetSubdir, "target-subdir", "", "Destination category segment under <root>/<year>/")
	cmd.Flags().StringVar(&originalGroup, "original-group", "", "Literal prefix identifying entries eligible for migration")
	_ = cmd.MarkFlagRequired("target-subdir")
	_ = cmd.MarkFlagRequired("original-group")

	return cmd
}

func renderSummary(summary *migrate.Summary, dryRun bool) string {
	rows := [][]string{
		{"Directories scanned", strconv.Itoa(summary.DirsScanned)},
		{"Groups migrated", strconv.Itoa(summary.Groups)},
		{"Groups skipped", strconv.Itoa(summary.SkippedGroups)},
	}
	if dryRun {
		rows = append(rows, []string{"Would move", strconv.Itoa(summary.WouldMove)})
	} else {
		rows = append(rows, []string{"Entries moved", strconv.Itoa(summary.Moved)})
	}
	rows = append(rows,
		[]string{"Failures", strconv.Itoa(summary.Failed)},
		[]string{"NFO files patched", strconv.Itoa(summary.Patched)},
	)
	return renderTable([]string{"Result", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
}
