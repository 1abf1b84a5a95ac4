// Package source reads parcel exports into raw records. County GIS and
// DOR files arrive as CSV with every value as text; each row becomes
// one raw record carrying its source identity and a content hash for
// dedup.
package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/drewmad/claimguardian-platform-sub005/normalize"
)

// RawRecord is one ingested row exactly as received: source identity,
// the source-native key and the untyped attribute bag. Immutable once
// written to the raw store.
type RawRecord struct {
	Source      string
	SourceID    string
	Attributes  normalize.StagingRecord
	ContentHash string
}

// idColumn is the source-native key column in DOR/GIS exports.
const idColumn = "PARCEL_ID"

// CSVReader streams raw records from one export file.
type CSVReader struct {
	source  string
	csv     *csv.Reader
	closer  io.Closer
	headers []string
	line    int
}

// Open opens an export file for reading. The first row must be the
// header row.
func Open(sourceName, path string) (*CSVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export file: %w", err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // county exports have ragged rows

	headers, err := r.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	for i := range headers {
		headers[i] = strings.ToUpper(strings.TrimSpace(headers[i]))
	}

	return &CSVReader{source: sourceName, csv: r, closer: f, headers: headers, line: 1}, nil
}

// NewCSVReader reads records from an already-open stream; used by tests
// and by callers ingesting from pipes.
func NewCSVReader(sourceName string, r io.Reader) (*CSVReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	for i := range headers {
		headers[i] = strings.ToUpper(strings.TrimSpace(headers[i]))
	}

	return &CSVReader{source: sourceName, csv: cr, headers: headers, line: 1}, nil
}

// Next returns the next raw record, or io.EOF when the file ends.
func (r *CSVReader) Next() (*RawRecord, error) {
	row, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read row %d: %w", r.line+1, err)
	}
	r.line++

	attrs := make(normalize.StagingRecord, len(r.headers))
	for i, h := range r.headers {
		if i < len(row) {
			attrs[h] = row[i]
		}
	}

	return &RawRecord{
		Source:      r.source,
		SourceID:    strings.TrimSpace(attrs[idColumn]),
		Attributes:  attrs,
		ContentHash: HashAttributes(attrs),
	}, nil
}

// Close closes the underlying file, if any.
func (r *CSVReader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// HashAttributes computes a stable content hash over the attribute bag.
// Keys are hashed in sorted order so map iteration order cannot change
// the hash; two rows with identical content always collide, which is
// what lets the raw store skip re-ingested duplicates.
func HashAttributes(attrs normalize.StagingRecord) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := xxhash.New()
	for _, k := range keys {
		h.WriteString(k)
		h.Write([]byte{0})
		h.WriteString(attrs[k])
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
