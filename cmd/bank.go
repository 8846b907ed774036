package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/marubatsu/internal/bank"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Inspect the question source",
}

var bankListCmd = &cobra.Command{
	Use:   "list",
	Short: "Count loadable questions per section for a mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("mode")
		ctx := cmd.Context()

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		loader, err := d.loader(ctx)
		if err != nil {
			return err
		}
		mode, err := lookupMode(loader, key)
		if err != nil {
			return err
		}
		pool, err := loader.Load(ctx, mode)
		if err != nil {
			return err
		}

		fmt.Printf("%s  %d問出題 ・ 合格 %d%%以上\n", mode.Name, mode.QuestionCount, mode.PassRate)
		fmt.Printf("%-8s  %6s  %6s  %6s\n", "Section", "問題数", "○", "×")
		fmt.Println(strings.Repeat("─", 36))
		for _, sc := range bank.Summarize(pool) {
			fmt.Printf("%-8d  %6d  %6d  %6d\n", sc.Section, sc.Questions, sc.True, sc.Questions-sc.True)
		}
		fmt.Println(strings.Repeat("─", 36))
		fmt.Printf("%-8s  %6d\n", "合計", len(pool))
		return nil
	},
}

var bankExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a mode's question pool to an .xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("mode")
		out, _ := cmd.Flags().GetString("out")
		ctx := cmd.Context()

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		loader, err := d.loader(ctx)
		if err != nil {
			return err
		}
		mode, err := lookupMode(loader, key)
		if err != nil {
			return err
		}
		pool, err := loader.Load(ctx, mode)
		if err != nil {
			return err
		}

		if out == "" {
			out = mode.Key + ".xlsx"
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()

		if err := bank.ExportXLSX(f, pool); err != nil {
			return err
		}
		fmt.Printf("Wrote %d questions to %s\n", len(pool), out)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{bankListCmd, bankExportCmd} {
		c.Flags().String("mode", bank.ModeProvisional, "Mode key")
		bankCmd.AddCommand(c)
	}
	bankExportCmd.Flags().String("out", "", "Output file (default: <mode>.xlsx)")
}
