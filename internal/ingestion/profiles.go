// Package ingestion reads the ordered list of profiles to process.
package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/invite-agent/internal/types"
)

// ErrNoColumns is returned when a data row has no fields at all
var ErrNoColumns = errors.New("row has no columns")

// ReadProfileList reads a CSV file whose first column holds profile URLs.
// The first row is a header and is skipped.
func ReadProfileList(path string) ([]types.ProfileID, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile list %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	ids, err := ParseProfileList(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile list %s: %w", path, err)
	}
	return ids, nil
}

// ParseProfileList parses CSV content. Blank identifiers are dropped; order
// and duplicates are preserved.
func ParseProfileList(r io.Reader) ([]types.ProfileID, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	// Header
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []types.ProfileID{}, nil
		}
		return nil, err
	}

	ids := []types.ProfileID{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			return nil, ErrNoColumns
		}

		id := strings.TrimSpace(row[0])
		if id == "" {
			continue
		}
		ids = append(ids, types.ProfileID(id))
	}
	return ids, nil
}
