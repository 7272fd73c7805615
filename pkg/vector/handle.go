package vector

import (
	"sync"
	"sync/atomic"
)

// Handle is a copy-on-write reference to the current Index. Rebuilds
// construct a complete replacement index off to the side and then Swap it in
// atomically; concurrent queries observe either the fully old or fully new
// index, never an intermediate state. Queries pin the index they read with
// Acquire, so a swapped-out index is closed only after its last in-flight
// reader releases it.
type Handle struct {
	ptr atomic.Pointer[holder]
}

// holder pairs an index with the count of references pinning it: one held
// by the Handle while the index is current, plus one per outstanding
// Acquire. The index closes when the count drops to zero.
type holder struct {
	index Index
	refs  atomic.Int64
}

func newHolder(index Index) *holder {
	hd := &holder{index: index}
	hd.refs.Store(1)
	return hd
}

func (hd *holder) acquire() bool {
	for {
		n := hd.refs.Load()
		if n == 0 {
			return false
		}
		if hd.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// release drops one reference and closes the index once nothing holds it.
// The close error is discarded: the index is already unreachable.
func (hd *holder) release() {
	if hd.refs.Add(-1) == 0 {
		_ = hd.index.Close()
	}
}

// NewHandle creates a Handle with no index loaded.
func NewHandle() *Handle {
	return &Handle{}
}

// Load peeks at the current index without pinning it, or returns nil if
// none has been swapped in yet. Callers that go on to Query must use
// Acquire instead, or a concurrent Swap may close the index under them.
func (h *Handle) Load() Index {
	if held := h.ptr.Load(); held != nil {
		return held.index
	}
	return nil
}

// Acquire returns the current index pinned against closure, plus a release
// the caller must invoke once it no longer touches the index. The index is
// nil when none has been installed; the release is idempotent and always
// safe to call.
func (h *Handle) Acquire() (Index, func()) {
	for {
		hd := h.ptr.Load()
		if hd == nil {
			return nil, func() {}
		}
		if hd.acquire() {
			var once sync.Once
			return hd.index, func() { once.Do(hd.release) }
		}
		// Lost the race against a swap that already retired this holder;
		// the pointer now leads to its replacement.
	}
}

// Swap installs a fully-built index, or uninstalls with nil. The replaced
// index is closed as soon as every in-flight Acquire has released it.
func (h *Handle) Swap(index Index) {
	var next *holder
	if index != nil {
		next = newHolder(index)
	}
	if prev := h.ptr.Swap(next); prev != nil {
		prev.release()
	}
}
