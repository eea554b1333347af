package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelver/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check library access and free space without migrating",
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
			fmt.Fprintln(cmd.OutOrStdout(), renderPreflight(checks))
			if !preflight.AllPassed(checks) {
				return fmt.Errorf("preflight checks failed for %s", root)
			}
			return nil
		},
	}
}

func renderPreflight(checks []preflight.Result) string {
	rows := make([][]string, 0, len(checks))
	for _, check := range checks {
		rows = append(rows, []string{check.Name, passFail(check.Passed), check.Detail})
	}
	return renderTable([]string{"Check", "Status", "Detail"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft})
}

func passFail(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}
