package tui

import (
	"github.com/verte-zerg/liftkit/internal/timer"
)

// Notifier queues chimes and banners raised by the timer engine until the
// model drains them on its next update.
type Notifier struct {
	chimes  int
	banners []banner
}

type banner struct {
	message string
	actions []string
}

var _ timer.Notifier = (*Notifier)(nil)

// NewNotifier returns an empty queue.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Chime implements timer.Notifier.
func (n *Notifier) Chime() {
	n.chimes++
}

// Notify implements timer.Notifier.
func (n *Notifier) Notify(message string, actions []string) {
	n.banners = append(n.banners, banner{message: message, actions: actions})
}

func (n *Notifier) drain() (chimes int, banners []banner) {
	chimes, banners = n.chimes, n.banners
	n.chimes = 0
	n.banners = nil
	return chimes, banners
}
