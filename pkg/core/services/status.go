package services

import "errors"

// ErrClosed is returned by queries and views after Close.
var ErrClosed = errors.New("closed")

// Status is the lifecycle state of a query
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// fetchSeq numbers fetches so that only the latest issued one may land.
// Callers hold the owning query's lock.
type fetchSeq struct {
	issued    uint64
	firstDone bool
}

func (f *fetchSeq) next() uint64 {
	f.issued++
	return f.issued
}

func (f *fetchSeq) latest(seq uint64) bool {
	return seq == f.issued
}

// resolve marks the latest fetch as landed. Once the first fetch has landed
// the loading indicator is never raised again.
func (f *fetchSeq) resolve() {
	f.firstDone = true
}

// initialLoading reports whether the first fetch of this query's life is
// still outstanding.
func (f *fetchSeq) initialLoading() bool {
	return !f.firstDone && f.issued > 0
}
