package usecase

import (
	"sync"
	"testing"
	"time"
)

func TestNotifierLatestMessageWins(t *testing.T) {
	t.Parallel()

	presenter := &fakePresenter{}
	notifier := NewNotifier(presenter, 30*time.Millisecond)
	defer notifier.Stop()

	notifier.Notify("first")
	notifier.Notify("second")

	if got := presenter.snapshotShown(); len(got) != 2 || got[1] != "second" {
		t.Fatalf("unexpected shown messages: %v", got)
	}
	if presenter.clearCount() != 0 {
		t.Fatalf("nothing should be cleared yet")
	}

	time.Sleep(60 * time.Millisecond)
	if presenter.clearCount() != 1 {
		t.Fatalf("expected exactly one dismissal, got %d", presenter.clearCount())
	}
}

func TestNotifierNewMessageResetsDismissal(t *testing.T) {
	t.Parallel()

	presenter := &fakePresenter{}
	notifier := NewNotifier(presenter, 50*time.Millisecond)
	defer notifier.Stop()

	notifier.Notify("first")
	time.Sleep(30 * time.Millisecond)
	notifier.Notify("second")
	time.Sleep(30 * time.Millisecond)

	// The first timer was replaced, so nothing has been dismissed yet.
	if presenter.clearCount() != 0 {
		t.Fatalf("expected the dismissal to have been rescheduled")
	}
}

func TestNotifierIgnoresEmptyText(t *testing.T) {
	t.Parallel()

	presenter := &fakePresenter{}
	notifier := NewNotifier(presenter, time.Minute)
	defer notifier.Stop()

	notifier.Notify("")
	if got := presenter.snapshotShown(); len(got) != 0 {
		t.Fatalf("empty text must not be shown, got %v", got)
	}
}

func TestNotifierStopCancelsPendingDismissal(t *testing.T) {
	t.Parallel()

	presenter := &fakePresenter{}
	notifier := NewNotifier(presenter, 20*time.Millisecond)

	notifier.Notify("text")
	notifier.Stop()

	time.Sleep(40 * time.Millisecond)
	if presenter.clearCount() != 0 {
		t.Fatalf("stop must cancel the scheduled dismissal")
	}
}

type fakePresenter struct {
	mu     sync.Mutex
	shown  []string
	clears int
}

func (f *fakePresenter) ShowNotice(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, text)
}

func (f *fakePresenter) ClearNotice() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
}

func (f *fakePresenter) snapshotShown() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.shown))
	copy(out, f.shown)
	return out
}

func (f *fakePresenter) clearCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clears
}
