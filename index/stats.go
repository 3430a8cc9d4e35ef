package index

import (
	"os"
	"time"

	"github.com/lexandro/fastfind/record"
)

// Stats describes an index file on disk.
type Stats struct {
	Path      string
	Layout    record.Layout
	SizeBytes int64
	ModTime   time.Time
	Records   int
	Malformed int // Split lines without exactly two fields
	Invalid   int // Lines that are not valid UTF-8
}

// ReadStats scans the index at path and counts its records, validating each one
// against layout.
func ReadStats(path string, layout record.Layout) (Stats, error) {
	stats := Stats{Path: path, Layout: layout}

	info, err := os.Stat(path)
	if err != nil {
		return stats, &IOError{Op: "stat", Path: path, Err: err}
	}
	stats.SizeBytes = info.Size()
	stats.ModTime = info.ModTime()

	reader, err := OpenReader(path)
	if err != nil {
		return stats, err
	}
	defer reader.Close()

	for line := range reader.Lines() {
		if layout == record.Split {
			if _, _, err := record.Fields(line); err != nil {
				stats.Malformed++
				continue
			}
		}
		stats.Records++
	}
	stats.Invalid = reader.Invalid()
	return stats, reader.Err()
}
