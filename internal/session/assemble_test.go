package session

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/abhisek/marubatsu/internal/bank"
	"github.com/abhisek/marubatsu/internal/ledger"
)

func makePool(n int) []bank.Question {
	pool := make([]bank.Question, n)
	for i := range pool {
		pool[i] = bank.Question{
			ID:      fmt.Sprintf("1-%d", i+1),
			Text:    fmt.Sprintf("q%d", i+1),
			Answer:  i%2 == 0,
			Section: 1,
		}
	}
	return pool
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestAssembleLength(t *testing.T) {
	tests := []struct {
		name     string
		poolSize int
		tracked  []string
		count    int
		want     int
	}{
		{"empty ledger fills to count", 100, nil, 50, 50},
		{"pool smaller than count", 10, nil, 50, 10},
		{"tracked plus fill", 100, []string{"1-3", "1-7"}, 50, 50},
		{"tracked exceeds count", 10, []string{"1-1", "1-2", "1-3"}, 2, 3},
		{"tracked equals count", 10, []string{"1-1", "1-2"}, 2, 2},
		{"zero count keeps tracked", 10, []string{"1-4"}, 0, 1},
		{"empty pool", 0, []string{"1-1"}, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ledger.New()
			for _, id := range tt.tracked {
				l[id] = 0
			}
			mode := bank.Mode{QuestionCount: tt.count}
			got := Assemble(makePool(tt.poolSize), l, mode, seeded(1))
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestAssembleRequiredFirstInPoolOrder(t *testing.T) {
	pool := makePool(20)
	l := ledger.Ledger{"1-15": 1, "1-4": 0, "1-9": 2, "9-9": 0}

	got := Assemble(pool, l, bank.Mode{QuestionCount: 10}, seeded(3))

	want := []string{"1-4", "1-9", "1-15"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
		}
	}

	seen := make(map[string]bool)
	for _, q := range got {
		if seen[q.ID] {
			t.Errorf("duplicate %s in session", q.ID)
		}
		seen[q.ID] = true
	}
	for _, q := range got[len(want):] {
		if _, tracked := l[q.ID]; tracked {
			t.Errorf("tracked question %s sampled into the remainder", q.ID)
		}
	}
}

func TestAssembleDeterministicWithSeed(t *testing.T) {
	pool := makePool(30)
	a := Assemble(pool, nil, bank.Mode{QuestionCount: 10}, seeded(42))
	b := Assemble(pool, nil, bank.Mode{QuestionCount: 10}, seeded(42))
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("same seed produced different sessions at %d: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
}

func TestAssembleDoesNotReorderPool(t *testing.T) {
	pool := makePool(10)
	Assemble(pool, nil, bank.Mode{QuestionCount: 5}, seeded(5))
	for i, q := range pool {
		if q.ID != fmt.Sprintf("1-%d", i+1) {
			t.Fatalf("pool[%d] = %s, pool was modified", i, q.ID)
		}
	}
}

func TestShuffleUniform(t *testing.T) {
	// Each of the 6 permutations of 3 items should show up roughly 1/6 of
	// the time.
	const trials = 60000
	rng := seeded(99)
	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		qs := makePool(3)
		shuffle(qs, rng)
		counts[qs[0].ID+qs[1].ID+qs[2].ID]++
	}
	if len(counts) != 6 {
		t.Fatalf("saw %d permutations, want 6", len(counts))
	}
	for perm, n := range counts {
		if n < trials/6*9/10 || n > trials/6*11/10 {
			t.Errorf("permutation %s seen %d times, want about %d", perm, n, trials/6)
		}
	}
}
