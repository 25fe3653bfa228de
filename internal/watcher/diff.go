package watcher

import "sort"

// ChangeEvent represents a file change between two snapshots
type ChangeEvent struct {
	Type EventType
	Path string
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Diff compares two snapshots and produces one event per path that differs.
// A path only in the new snapshot is created, a path only in the old one is
// deleted, and a path in both is modified when its new timestamp is strictly
// later. It is a pure function of the two maps; the filesystem is never
// consulted. Events are returned sorted by path so the result is stable for
// a given input pair.
func Diff(old, next Snapshot) []ChangeEvent {
	events := make([]ChangeEvent, 0)

	for path, modTime := range next {
		prev, ok := old[path]
		switch {
		case !ok:
			events = append(events, ChangeEvent{Type: EventTypeCreated, Path: path})
		case modTime.After(prev):
			events = append(events, ChangeEvent{Type: EventTypeModified, Path: path})
		}
	}

	for path := range old {
		if _, ok := next[path]; !ok {
			events = append(events, ChangeEvent{Type: EventTypeDeleted, Path: path})
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Path < events[j].Path
	})

	return events
}
