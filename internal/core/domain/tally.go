package domain

import "sync"

// ErrorClassUnknown is the tally bucket for failures that did not come
// from the remote index (local I/O errors, transport failures).
const ErrorClassUnknown = "UNKNOWN"

// ErrorTally counts terminal upload failures by classifier: the remote
// status code as a string, or ErrorClassUnknown. It is shared by all
// workers, so increments are guarded; losing a count would understate
// failures in the final report.
type ErrorTally struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewErrorTally creates an empty tally.
func NewErrorTally() *ErrorTally {
	return &ErrorTally{counts: make(map[string]int)}
}

// Record increments the count for a classifier.
func (t *ErrorTally) Record(class string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[class]++
}

// Total returns the sum of all recorded failures.
func (t *ErrorTally) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}

// Snapshot returns a copy of the per-classifier counts.
func (t *ErrorTally) Snapshot() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]int, len(t.counts))
	for class, n := range t.counts {
		out[class] = n
	}
	return out
}
