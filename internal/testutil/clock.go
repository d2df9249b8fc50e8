package testutil

import "sync/atomic"

// Sequence is a monotonic logical counter for request and trace positions.
//
// Positions start at 1 and never repeat until Reset. Two chains that issue the
// same requests in the same order therefore record identical positions, which
// keeps golden traces byte-stable.
type Sequence struct {
	seq atomic.Int64
}

// NewSequence creates a sequence whose first Next() returns 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next advances the sequence and returns the new position.
func (s *Sequence) Next() int64 {
	return s.seq.Add(1)
}

// Current returns the last position handed out, 0 if none.
func (s *Sequence) Current() int64 {
	return s.seq.Load()
}

// Reset rewinds the sequence so the next call to Next returns 1.
func (s *Sequence) Reset() {
	s.seq.Store(0)
}
