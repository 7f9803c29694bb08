package tui

import tea "github.com/charmbracelet/bubbletea"

// PointerHandler receives mouse events. Returning true stops delivery to
// later subscribers and to the model's own mouse handling.
type PointerHandler func(msg tea.MouseMsg) bool

// PointerBus fans mouse events out to scoped subscribers
type PointerBus struct {
	nextID int
	order  []int
	subs   map[int]PointerHandler
}

// NewPointerBus creates an empty bus
func NewPointerBus() *PointerBus {
	return &PointerBus{subs: make(map[int]PointerHandler)}
}

// Subscribe registers h and returns the function that removes it.
// Calling the returned function more than once is a no-op.
func (b *PointerBus) Subscribe(h PointerHandler) func() {
	b.nextID++
	id := b.nextID
	b.subs[id] = h
	b.order = append(b.order, id)

	return func() {
		if _, ok := b.subs[id]; !ok {
			return
		}
		delete(b.subs, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Dispatch delivers msg in subscription order. Handlers may unsubscribe
// while being dispatched.
func (b *PointerBus) Dispatch(msg tea.MouseMsg) bool {
	ids := append([]int(nil), b.order...)
	for _, id := range ids {
		h, ok := b.subs[id]
		if !ok {
			continue
		}
		if h(msg) {
			return true
		}
	}
	return false
}

// Len returns the number of live subscriptions
func (b *PointerBus) Len() int {
	return len(b.subs)
}
