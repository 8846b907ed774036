// Package ledger tracks which questions still need review. A question
// enters the ledger when answered incorrectly and graduates after three
// consecutive correct answers.
package ledger

import "sort"

// StorageKey is the single key the ledger is persisted under.
const StorageKey = "driver-license-quiz-review-v1"

// GraduationStreak is the number of consecutive correct answers that
// removes a question from the ledger.
const GraduationStreak = 3

// Ledger maps question id to its current correct streak. Every stored
// streak is in [0, GraduationStreak).
type Ledger map[string]int

// New returns an empty ledger.
func New() Ledger {
	return Ledger{}
}

// Record applies one answer and returns the updated ledger. The receiver
// is not modified.
//
//   - incorrect: streak resets to 0, creating the entry if needed
//   - correct and tracked: streak+1, removed once it reaches GraduationStreak
//   - correct and untracked: unchanged
func (l Ledger) Record(id string, correct bool) Ledger {
	next := l.Clone()
	if !correct {
		next[id] = 0
		return next
	}
	streak, tracked := next[id]
	if !tracked {
		return next
	}
	streak++
	if streak >= GraduationStreak {
		delete(next, id)
	} else {
		next[id] = streak
	}
	return next
}

// Clone returns an independent copy.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Required returns the set of ids that must appear in the next session.
func (l Ledger) Required() map[string]bool {
	out := make(map[string]bool, len(l))
	for id, streak := range l {
		if streak < GraduationStreak {
			out[id] = true
		}
	}
	return out
}

// Streak returns the streak for id and whether it is tracked.
func (l Ledger) Streak(id string) (int, bool) {
	s, ok := l[id]
	return s, ok
}

// Len returns the number of tracked questions.
func (l Ledger) Len() int {
	return len(l)
}

// IDs returns the tracked ids in sorted order.
func (l Ledger) IDs() []string {
	ids := make([]string, 0, len(l))
	for id := range l {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
