package usecase

import (
	"sync"
	"time"
)

// NoticePresenter displays one transient status message at a time.
type NoticePresenter interface {
	ShowNotice(text string)
	ClearNotice()
}

// Notifier is the notification surface: every call replaces the displayed
// text and resets the dismiss timer. There is no queue; the latest message
// wins.
type Notifier struct {
	presenter NoticePresenter
	ttl       time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewNotifier(presenter NoticePresenter, ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Notifier{presenter: presenter, ttl: ttl}
}

// Notify displays the message and schedules its dismissal.
func (n *Notifier) Notify(text string) {
	if text == "" {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.presenter.ShowNotice(text)
	n.timer = time.AfterFunc(n.ttl, n.presenter.ClearNotice)
}

// Stop cancels a pending dismissal, for teardown.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
