// Package session builds quiz sessions from a question pool and walks the
// learner through them, keeping the review ledger up to date.
package session

import (
	"math/rand/v2"

	"github.com/abhisek/marubatsu/internal/bank"
	"github.com/abhisek/marubatsu/internal/ledger"
)

// Assemble picks the questions for one session. Every pool question still
// tracked by the ledger comes first, in pool order, and is never cut. The
// rest of the session is a uniform random sample of the remaining pool,
// filling up to mode.QuestionCount. The result may be shorter than the
// target (small pool) or longer (many tracked questions).
func Assemble(pool []bank.Question, l ledger.Ledger, mode bank.Mode, rng *rand.Rand) []bank.Question {
	tracked := l.Required()

	var required, remaining []bank.Question
	for _, q := range pool {
		if tracked[q.ID] {
			required = append(required, q)
		} else {
			remaining = append(remaining, q)
		}
	}

	shuffle(remaining, rng)

	fill := max(mode.QuestionCount-len(required), 0)
	fill = min(fill, len(remaining))

	out := make([]bank.Question, 0, len(required)+fill)
	out = append(out, required...)
	out = append(out, remaining[:fill]...)
	return out
}

// shuffle permutes qs in place with a Fisher-Yates shuffle.
func shuffle(qs []bank.Question, rng *rand.Rand) {
	for i := len(qs) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}

// NewRand returns a randomly seeded generator for production use.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
