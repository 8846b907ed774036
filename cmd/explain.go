package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/marubatsu/internal/bank"
)

var explainCmd = &cobra.Command{
	Use:   "explain <question-id>",
	Short: "Print the explanation for a question, generating one if needed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
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

		q, ok, err := findQuestion(cmd, loader, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("question %q not found", id)
		}

		svc, err := newExplainer(ctx, d)
		if err != nil {
			return err
		}
		text, err := svc.Explain(ctx, q)
		if err != nil {
			return fmt.Errorf("explain %s: %w", id, err)
		}

		fmt.Printf("%s  (%s)\n%s\n\n解説: %s\n", q.ID, answerLabel(q.Answer), q.Text, text)
		return nil
	},
}

// findQuestion searches every mode's pool for id.
func findQuestion(cmd *cobra.Command, loader *bank.Loader, id string) (bank.Question, bool, error) {
	for _, mode := range loader.Manifest().Modes {
		pool, err := loader.Load(cmd.Context(), mode)
		if err != nil {
			return bank.Question{}, false, err
		}
		for _, q := range pool {
			if q.ID == id {
				return q, true, nil
			}
		}
	}
	return bank.Question{}, false, nil
}

func answerLabel(v bool) string {
	if v {
		return "○"
	}
	return "×"
}
