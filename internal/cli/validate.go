package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/slatedata/slatetest/internal/fixture"
)

// ValidationResult holds the result of validating fixture files.
type ValidationResult struct {
	Files  []FileValidation `json:"files"`
	Valid  int              `json:"valid"`
	Broken int              `json:"broken"`
}

// FileValidation is the validation outcome of one fixture file.
type FileValidation struct {
	Path     string   `json:"path"`
	Valid    bool     `json:"valid"`
	Fixtures []string `json:"fixtures,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <fixtures.cue>...",
		Short: "Validate dataset fixture files",
		Long: `Compile fixture files and report definition errors without running
any checks. Schema strings and expect clauses are validated.

Exit codes:
  0 - All files valid
  2 - One or more files invalid`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, args)
		},
	}
	return cmd
}

func runValidate(cmd *cobra.Command, opts *RootOptions, paths []string) error {
	result := ValidationResult{}
	for _, path := range paths {
		fv := FileValidation{Path: path, Valid: true}
		fixtures, err := fixture.LoadFile(path)
		if err != nil {
			fv.Valid = false
			fv.Error = err.Error()
			result.Broken++
		} else {
			for _, f := range fixtures {
				fv.Fixtures = append(fv.Fixtures, f.Name)
			}
			result.Valid++
		}
		result.Files = append(result.Files, fv)
	}

	printErr := printResult(cmd.OutOrStdout(), opts.Format, result, func(w io.Writer) {
		for _, fv := range result.Files {
			if fv.Valid {
				fmt.Fprintf(w, "OK    %s (%d fixtures)\n", fv.Path, len(fv.Fixtures))
			} else {
				fmt.Fprintf(w, "ERROR %s: %s\n", fv.Path, fv.Error)
			}
		}
	})
	if printErr != nil {
		return printErr
	}
	if result.Broken > 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("%d fixture files invalid", result.Broken))
	}
	return nil
}
