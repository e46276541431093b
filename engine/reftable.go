package engine

import (
	"github.com/wippyai/engine-bridge/errors"
)

var errClosedTable = errors.Closed(errors.PhaseHandle, "reference table")

// RefHandle is an opaque index into an instance's global reference table.
// Handle 0 is reserved and always invalid.
type RefHandle uint32

// refTable is the instance-global reference table backing persistent
// handles. Entries are reached by index with free-list reuse. The table is
// engine-thread-only by contract, so it carries no lock: callers that touch
// it from a background goroutine violate the threading contract of the
// whole layer, not just this table.
type refTable struct {
	entries  []refEntry
	freeList []RefHandle
	closed   bool
}

type refEntry struct {
	rec   *record
	valid bool
}

func (t *refTable) create(rec *record) (RefHandle, error) {
	if t.closed {
		return 0, errClosedTable
	}

	e := refEntry{rec: rec, valid: true}

	if n := len(t.freeList); n > 0 {
		h := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[h-1] = e
		return h, nil
	}

	t.entries = append(t.entries, e)
	return RefHandle(len(t.entries)), nil
}

func (t *refTable) get(h RefHandle) (*record, bool) {
	if h == 0 || int(h) > len(t.entries) {
		return nil, false
	}
	e := t.entries[h-1]
	if !e.valid {
		return nil, false
	}
	return e.rec, true
}

func (t *refTable) update(h RefHandle, rec *record) bool {
	if h == 0 || int(h) > len(t.entries) {
		return false
	}
	e := &t.entries[h-1]
	if !e.valid {
		return false
	}
	e.rec = rec
	return true
}

func (t *refTable) drop(h RefHandle) bool {
	if h == 0 || int(h) > len(t.entries) {
		return false
	}
	e := &t.entries[h-1]
	if !e.valid {
		return false
	}
	e.valid = false
	e.rec = nil
	t.freeList = append(t.freeList, h)
	return true
}

func (t *refTable) len() int {
	count := 0
	for _, e := range t.entries {
		if e.valid {
			count++
		}
	}
	return count
}

func (t *refTable) close() {
	if t.closed {
		return
	}
	t.closed = true
	t.entries = nil
	t.freeList = nil
}
