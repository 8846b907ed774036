package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the review list",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return errors.New("this deletes every review entry; re-run with --yes to confirm")
		}

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		n := d.ledger.Load(cmd.Context()).Len()
		if err := d.ledger.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clear review list: %w", err)
		}
		fmt.Printf("Removed %d questions from the review list.\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
