package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"declmap/internal/loader"
	"declmap/internal/store"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	DBPath string
}

// MigrateResult summarizes a migration run.
type MigrateResult struct {
	Database string   `json:"database"`
	Tables   []string `json:"tables"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate <defs-dir>",
		Short: "Materialize class tables",
		Long: `Resolve class definitions and create the backing SQLite tables.

Each resolved contract with column attributes gets one table; the primary
key column is INTEGER PRIMARY KEY AUTOINCREMENT. Running migrate twice
against the same database is safe.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "declmap.db", "path to the SQLite database")

	return cmd
}

func runMigrate(opts *MigrateOptions, defsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	reg, defs, err := loader.LoadDir(defsDir)
	if err != nil {
		_ = formatter.Error("E_LOAD", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		_ = formatter.Error("E_STORE", err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	defer st.Close()

	ctx := cmd.Context()
	result := MigrateResult{Database: opts.DBPath}
	for _, def := range defs {
		contract, err := reg.Resolve(def.Name)
		if err != nil {
			_ = formatter.Error("E_RESOLVE", err.Error(), nil)
			return NewExitError(ExitFailure, err.Error())
		}
		if contract.Table == "" {
			formatter.VerboseLog("Skipping %s: no table declared", def.Name)
			continue
		}

		formatter.VerboseLog("Creating table %s for %s", contract.Table, def.Name)
		if err := st.CreateTable(ctx, contract); err != nil {
			_ = formatter.Error("E_STORE", err.Error(), nil)
			return NewExitError(ExitFailure, err.Error())
		}
		result.Tables = append(result.Tables, contract.Table)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %d table(s) materialized in %s\n", len(result.Tables), result.Database)
	return nil
}
