package ledger

import "strings"

// Stats summarises a ledger for display.
type Stats struct {
	Tracked  int
	ByStreak [GraduationStreak]int
}

// ComputeStats counts tracked questions per streak.
func ComputeStats(l Ledger) Stats {
	var s Stats
	for _, streak := range l {
		if streak < 0 || streak >= GraduationStreak {
			continue
		}
		s.Tracked++
		s.ByStreak[streak]++
	}
	return s
}

// ToGraduate returns the number of correct answers still needed to clear
// the ledger, assuming no further misses.
func (s Stats) ToGraduate() int {
	n := 0
	for streak, count := range s.ByStreak {
		n += (GraduationStreak - streak) * count
	}
	return n
}

// StreakBar renders a streak as filled and empty dots, e.g. "●○○".
func StreakBar(streak int) string {
	if streak < 0 {
		streak = 0
	}
	if streak > GraduationStreak {
		streak = GraduationStreak
	}
	return strings.Repeat("●", streak) + strings.Repeat("○", GraduationStreak-streak)
}
