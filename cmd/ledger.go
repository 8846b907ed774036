package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/marubatsu/internal/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Export or import the review list",
}

var ledgerExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the review list as JSON (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		l := d.ledger.Load(cmd.Context())
		if len(args) == 0 {
			return ledger.Export(cmd.OutOrStdout(), l)
		}
		return exportFile(args[0], l)
	},
}

var ledgerImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the review list with a previously exported one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		l, err := ledger.Import(f)
		if err != nil {
			return err
		}

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.ledger.Save(cmd.Context(), l); err != nil {
			return fmt.Errorf("save review list: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d questions into the review list.\n", l.Len())
		return nil
	},
}

func init() {
	ledgerCmd.AddCommand(ledgerExportCmd)
	ledgerCmd.AddCommand(ledgerImportCmd)
}

// exportFile writes l to path. A failed close is reported since that is
// where buffered writes surface.
func exportFile(path string, l ledger.Ledger) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return ledger.Export(f, l)
}
