// Package watcher implements vigil's polling change detection: it snapshots
// the modification times of every file under the watched roots, diffs
// successive snapshots into change events, and drives registered handlers
// once per batch of changes.
//
// Symlink behavior follows filepath.WalkDir: symlinked directories are not
// descended into, and a symlink to a file is recorded with the link's own
// metadata.
package watcher

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/conneroisu/vigil/internal/logging"
)

// Snapshot maps each watched file path to its last-modified timestamp at one
// point in time.
type Snapshot map[string]time.Time

// Snapshotter enumerates files under a set of root directories
type Snapshotter struct {
	logger logging.Logger
}

// NewSnapshotter creates a new snapshotter
func NewSnapshotter(logger logging.Logger) *Snapshotter {
	if logger == nil {
		logger = logging.NewLogger(nil)
	}
	return &Snapshotter{logger: logger.WithComponent("snapshot")}
}

// Take walks every root and records the modification time of each regular
// file reachable from it. A root that is missing or unreadable contributes
// nothing and is logged as a warning; the remaining roots are still walked.
// Individual files that cannot be stat'd are skipped the same way. A nil or
// empty root list yields an empty snapshot.
func (s *Snapshotter) Take(ctx context.Context, roots []string) Snapshot {
	snapshot := make(Snapshot)

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.logger.Warn(ctx, err, "skipping unreadable path", "path", path)
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				// Stat can race with deletion between the directory
				// read and here.
				s.logger.Warn(ctx, err, "skipping unreadable file", "path", path)
				return nil
			}
			snapshot[path] = info.ModTime()
			return nil
		})
		if err != nil {
			s.logger.Warn(ctx, err, "failed to walk root", "root", root)
		}
	}

	return snapshot
}
