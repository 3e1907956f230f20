package sys

import "sync/atomic"

// ChildNotifier records that some child process has changed state. The
// signal handler sets it when SIGCHLD arrives, and the interactive loop takes
// it to decide whether to reap background jobs.
type ChildNotifier struct {
	pending atomic.Bool
}

// Notify marks that a child has changed state.
func (n *ChildNotifier) Notify() { n.pending.Store(true) }

// Take reports whether a child has changed state since the last call, and
// clears the mark.
func (n *ChildNotifier) Take() bool { return n.pending.Swap(false) }
