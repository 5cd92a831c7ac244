package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/slatedata/slatetest/internal/fixture"
	"github.com/slatedata/slatetest/internal/grid"
	"github.com/slatedata/slatetest/internal/harness"
)

// FixtureResult holds the result of checking a single fixture.
type FixtureResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// CheckResult holds the overall check result.
type CheckResult struct {
	Fixtures []FixtureResult `json:"fixtures"`
	Passed   int             `json:"passed"`
	Failed   int             `json:"failed"`
	Total    int             `json:"total"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <fixtures.cue>...",
		Short: "Run dataset fixture checks",
		Long: `Materialize each fixture in a fresh local compute session and
compare it against its expectations.

Every fixture's derived schema is checked against its expected schema;
fixtures with an expect.rows clause additionally get an order-
insensitive row comparison.

Exit codes:
  0 - All fixtures passed
  1 - One or more fixtures failed
  2 - Command error (missing files, bad fixture definitions)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChecks(cmd, rootOpts, args)
		},
	}
	return cmd
}

func runChecks(cmd *cobra.Command, opts *RootOptions, paths []string) error {
	var fixtures []fixture.Fixture
	for _, path := range paths {
		fs, err := fixture.LoadFile(path)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("load fixtures from %s", path), err)
		}
		fixtures = append(fixtures, fs...)
	}

	result := CheckResult{Total: len(fixtures)}
	for _, f := range fixtures {
		fr := checkFixture(cmd.Context(), f)
		if fr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Fixtures = append(result.Fixtures, fr)
	}

	printErr := printResult(cmd.OutOrStdout(), opts.Format, result, func(w io.Writer) {
		for _, fr := range result.Fixtures {
			status := "PASS"
			if !fr.Pass {
				status = "FAIL"
			}
			fmt.Fprintf(w, "%s  %s\n", status, fr.Name)
			if opts.Verbose || !fr.Pass {
				for _, msg := range fr.Errors {
					fmt.Fprintf(w, "  %s\n", msg)
				}
			}
		}
		fmt.Fprintf(w, "%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	})
	if printErr != nil {
		return printErr
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d fixtures failed", result.Failed, result.Total))
	}
	return nil
}

// checkFixture materializes one fixture in its own ephemeral session
// and evaluates its expectations. The session is always released.
func checkFixture(ctx context.Context, f fixture.Fixture) FixtureResult {
	fr := FixtureResult{Name: f.Name, Pass: true}
	fail := func(err error) {
		fr.Pass = false
		fr.Errors = append(fr.Errors, err.Error())
	}

	c, err := grid.NewContext("check-"+f.Name, grid.Local(2))
	if err != nil {
		fail(err)
		return fr
	}
	defer c.Stop()

	ds, err := c.CreateDataset(ctx, f.Schema, f.Rows)
	if err != nil {
		fail(err)
		return fr
	}

	if err := harness.CompareSchema(ctx, ds, f.ExpectedSchema()); err != nil {
		fail(err)
	}
	if f.ExpectRows != "" {
		if err := harness.CompareDatasetRows(ctx, ds, f.ExpectRows); err != nil {
			fail(err)
		}
	}
	return fr
}
