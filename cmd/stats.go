package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/marubatsu/internal/ledger"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show review list and answer history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		ctx := cmd.Context()

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		l := d.ledger.Load(ctx)
		st := ledger.ComputeStats(l)

		sep := strings.Repeat("─", 48)
		fmt.Println("復習リスト")
		fmt.Println(sep)
		if d.cache != nil {
			status := "接続中"
			if err := d.cache.HealthCheck(ctx); err != nil {
				status = "応答なし: " + err.Error()
			}
			fmt.Printf("  保存先       %s (%s)\n", d.cache.Key(ledger.StorageKey), status)
		} else {
			fmt.Println("  保存先       SQLite")
		}
		fmt.Printf("  対象の問題   %d\n", st.Tracked)
		for streak, n := range st.ByStreak {
			fmt.Printf("  %s        %d\n", ledger.StreakBar(streak), n)
		}
		fmt.Printf("  卒業まで     あと%d回正解\n", st.ToGraduate())
		fmt.Println()

		repo := d.store.EventRepo()
		totals, err := repo.AnswerTotals(ctx)
		if err != nil {
			return fmt.Errorf("answer totals: %w", err)
		}
		fmt.Println("解答履歴")
		fmt.Println(sep)
		fmt.Printf("  解答数       %d (%d問)\n", totals.Answers, totals.Questions)
		fmt.Printf("  正答率       %.1f%%\n", totals.Accuracy()*100)
		fmt.Println()

		sessions, err := repo.RecentSessions(ctx, limit)
		if err != nil {
			return fmt.Errorf("recent sessions: %w", err)
		}
		fmt.Println("最近のテスト")
		fmt.Println(sep)
		if len(sessions) == 0 {
			fmt.Println("  (なし)")
		}
		for _, s := range sessions {
			verdict := "不合格"
			if s.Passed {
				verdict = "合格"
			}
			fmt.Printf("  %s  %-12s  %3d/%-3d  %3d%%  %s\n",
				s.Timestamp.Local().Format("2006-01-02 15:04"),
				s.Mode, s.Score, s.Questions, s.Percentage, verdict)
		}
		fmt.Println()

		missed, err := repo.MostMissed(ctx, limit)
		if err != nil {
			return fmt.Errorf("most missed: %w", err)
		}
		fmt.Println("よく間違える問題")
		fmt.Println(sep)
		if len(missed) == 0 {
			fmt.Println("  (なし)")
		}
		for _, m := range missed {
			mark := ""
			if streak, ok := l.Streak(m.QuestionID); ok {
				mark = ledger.StreakBar(streak)
			}
			fmt.Printf("  %-12s  %3d回  %s\n", m.QuestionID, m.Misses, mark)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("limit", 10, "Number of sessions and questions to list")
}
