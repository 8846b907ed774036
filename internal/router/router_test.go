package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/marubatsu/internal/screen"
)

type stubScreen struct {
	title   string
	inits   int
	updates int
	// next, when set, is returned from Update in place of the screen.
	next screen.Screen
}

func (s *stubScreen) Init() tea.Cmd {
	s.inits++
	return nil
}

func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) {
	s.updates++
	if s.next != nil {
		return s.next, nil
	}
	return s, nil
}

func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

func titles(r *Router) []string {
	var out []string
	for _, s := range r.stack {
		out = append(out, s.Title())
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNavigation(t *testing.T) {
	menu := &stubScreen{title: "モード選択"}
	quiz := &stubScreen{title: "仮免許"}
	results := &stubScreen{title: "結果"}
	history := &stubScreen{title: "学習履歴"}

	r := New(menu)
	r.Push(quiz)
	if quiz.inits != 1 {
		t.Errorf("pushed screen Init ran %d times", quiz.inits)
	}

	r.Replace(results)
	if got := titles(r); !equal(got, []string{"モード選択", "結果"}) {
		t.Fatalf("after Replace: %v", got)
	}
	if results.inits != 1 {
		t.Errorf("replacement Init ran %d times", results.inits)
	}

	r.Push(history)
	r.Pop()
	if r.Active() != results {
		t.Fatalf("after Pop active = %q", r.Active().Title())
	}

	r.Push(history)
	r.PopToRoot()
	if r.Depth() != 1 || r.Active() != menu {
		t.Fatalf("after PopToRoot: %v", titles(r))
	}
	if menu.inits != 1 {
		t.Errorf("root re-initialised %d times, want 1", menu.inits)
	}
}

func TestPopKeepsRoot(t *testing.T) {
	r := New(&stubScreen{title: "モード選択"})
	r.Pop()
	r.Pop()
	if r.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", r.Depth())
	}
}

func TestUpdateOnlyReachesActive(t *testing.T) {
	menu := &stubScreen{title: "モード選択"}
	quiz := &stubScreen{title: "仮免許"}
	r := New(menu)
	r.Push(quiz)

	r.Update(tea.KeyPressMsg{Code: 'o', Text: "o"})

	if menu.updates != 0 || quiz.updates != 1 {
		t.Errorf("updates = %d/%d, want 0/1", menu.updates, quiz.updates)
	}
	if got := r.View(80, 24); got != "仮免許" {
		t.Errorf("View = %q", got)
	}
}

func TestUpdateStoresReturnedScreen(t *testing.T) {
	next := &stubScreen{title: "結果"}
	r := New(&stubScreen{title: "モード選択"})
	r.Push(&stubScreen{title: "仮免許", next: next})

	r.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if r.Active() != next || r.Depth() != 2 {
		t.Fatalf("active = %q depth = %d", r.Active().Title(), r.Depth())
	}
}
