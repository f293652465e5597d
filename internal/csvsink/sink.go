// Package csvsink appends exported rows to a CSV file.
package csvsink

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
)

// Sink appends to one CSV file shared by a whole run. The file is opened
// and closed on every Write; a header is written only while the file is
// empty. There is no locking, a single writer is assumed.
type Sink struct {
	path string
}

func New(path string) *Sink {
	return &Sink{path: path}
}

// Write appends rows, preceded by header when the file has no content yet.
func (s *Sink) Write(header []string, rows [][]string) (err error) {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open csv file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close csv file: %w", cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat csv file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
		slog.Debug("csv header written", "path", s.path, "columns", len(header))
	}

	for _, row := range rows {
		if len(row) != len(header) {
			return fmt.Errorf("csv row has %d columns, header has %d", len(row), len(header))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv file: %w", err)
	}
	return nil
}
