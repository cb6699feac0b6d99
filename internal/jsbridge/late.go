package jsbridge

import "sync"

// lateBinder attaches a handler one scheduling turn after a dialog is built,
// once the browser has laid out the inserted elements. Closing the dialog
// first cancels the attach.
type lateBinder struct {
	mu     sync.Mutex
	closed bool
}

// after asks schedule to run attach on a later turn.
func (b *lateBinder) after(schedule func(func()), attach func()) {
	schedule(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !b.closed {
			attach()
		}
	})
}

// close marks the binder closed and runs release under the same lock, so a
// pending attach never lands on released listeners.
func (b *lateBinder) close(release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	release()
}
