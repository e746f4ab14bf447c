package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/seiya-matsuoka/csv-to-insert-generator/internal/convert"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var applyCmd = &cobra.Command{
	Use:   "apply <file.csv>",
	Short: "Convert a Format D CSV file and execute the script against PostgreSQL",
	Long: `apply runs the conversion pipeline and, if it succeeds, executes the
generated script against the target database. The script is a single
BEGIN/COMMIT transaction, so the rows land atomically or not at all.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbURL := viper.GetString("db_url")
		if dbURL == "" {
			return fmt.Errorf("database URL is required (--db-url or CSVGEN_DB_URL)")
		}

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
			return fmt.Errorf("conversion failed with %d error(s); nothing executed", len(result.Errors))
		}

		ctx := cmd.Context()
		conn, err := pgx.Connect(ctx, dbURL)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer conn.Close(ctx)

		// Exec without arguments uses the simple protocol, which accepts the
		// whole multi-statement script including its BEGIN/COMMIT.
		if _, err := conn.Exec(ctx, result.SQLText); err != nil {
			return fmt.Errorf("execute script: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().String("db-url", "", "PostgreSQL connection URL")
	viper.BindPFlag("db_url", applyCmd.Flags().Lookup("db-url"))
}
