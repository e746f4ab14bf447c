package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/seiya-matsuoka/csv-to-insert-generator/internal/convert"
	"github.com/spf13/cobra"
)

var convertOut string

var convertCmd = &cobra.Command{
	Use:   "convert <file.csv>",
	Short: "Convert a Format D CSV file into an INSERT script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		req, err := convert.NewRequest(string(data), filepath.Base(path))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		result := newPipeline().Convert(req)
		if !result.OK() {
			printErrors(cmd.ErrOrStderr(), result)
			return fmt.Errorf("conversion failed with %d error(s)", len(result.Errors))
		}

		out := convertOut
		if out == "" {
			out = filepath.Join(filepath.Dir(path), result.OutputFileName)
		}
		if err := os.WriteFile(out, []byte(result.SQLText), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "output path (default: derived name next to the input)")
}
