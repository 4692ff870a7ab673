package mocks

import (
	"github.com/mcoot/sovereign-client/internal/dependencies/random"
)

// MockRandom replays queued draws. With nothing queued, Intn returns 0 and
// String returns "", which gives the fake server its fixed test universe.
type MockRandom struct {
	ints    []int
	strings []string
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a MockRandom with empty queues
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn pops the next queued int, clamped into [0, n)
func (r *MockRandom) Intn(n int) int {
	if len(r.ints) == 0 || n <= 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	if v < 0 || v >= n {
		return 0
	}
	return v
}

// String pops the next queued string, cut to length
func (r *MockRandom) String(length int, alphabet string) string {
	if len(r.strings) == 0 {
		return ""
	}
	v := r.strings[0]
	r.strings = r.strings[1:]
	if len(v) > length {
		v = v[:length]
	}
	return v
}

// QueueIntn appends Intn results
func (r *MockRandom) QueueIntn(values ...int) {
	r.ints = append(r.ints, values...)
}

// QueueString appends String results
func (r *MockRandom) QueueString(values ...string) {
	r.strings = append(r.strings, values...)
}
