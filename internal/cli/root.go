// Package cli implements the csvgen command line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/seiya-matsuoka/csv-to-insert-generator/internal/convert"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "csvgen",
	Short: "Convert Format D CSV files into transactional INSERT scripts",
	Long: `csvgen converts CSV files in Format D (a #table= / #types= / header /
data-row layout) into SQL scripts of INSERT statements wrapped in a single
BEGIN/COMMIT transaction.

Validation errors are reported with their physical line number, column and
reason, capped per run.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Int("max-errors", convert.DefaultMaxErrors, "maximum validation errors reported per run")

	// Flag > CSVGEN_MAX_ERRORS env > default
	viper.BindPFlag("max_errors", rootCmd.PersistentFlags().Lookup("max-errors"))
	viper.SetEnvPrefix("CSVGEN")
	viper.AutomaticEnv()
}

// newPipeline builds a pipeline honoring the shared error cap setting.
func newPipeline() *convert.Pipeline {
	return convert.NewPipeline(convert.WithMaxErrors(viper.GetInt("max_errors")))
}

// printErrors writes collected validation errors in a line-oriented format.
func printErrors(w io.Writer, result convert.Result) {
	for _, e := range result.Errors {
		fmt.Fprintf(w, "line %d, column %s [%s]: %s", e.FileLine, e.ColumnName, e.Type, e.Reason)
		if e.Input != "" {
			fmt.Fprintf(w, " (input: %q)", e.Input)
		}
		fmt.Fprintln(w)
	}
	if result.Truncated {
		fmt.Fprintln(w, "error list truncated; fix the reported problems and re-run")
	}
}
