// Package router keeps the stack of screens. The app model decides when
// to navigate; screens only report what happened through messages.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/marubatsu/internal/screen"
)

// Router is a screen stack that never drops below its root.
type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

// Push shows s above the current screen.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop goes back one screen. The root cannot be popped.
func (r *Router) Pop() {
	if len(r.stack) > 1 {
		r.stack[len(r.stack)-1] = nil
		r.stack = r.stack[:len(r.stack)-1]
	}
}

// Replace swaps the top screen for s, e.g. quiz for results, so that
// going back skips the finished screen.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	r.stack[len(r.stack)-1] = s
	return s.Init()
}

// PopToRoot returns to the root and runs its Init again so it can
// refresh, e.g. the review count on the mode menu.
func (r *Router) PopToRoot() tea.Cmd {
	clear(r.stack[1:])
	r.stack = r.stack[:1]
	return r.stack[0].Init()
}

func (r *Router) Active() screen.Screen {
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int {
	return len(r.stack)
}

// Update hands msg to the active screen, which may replace itself.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	next, cmd := r.Active().Update(msg)
	r.stack[len(r.stack)-1] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}
