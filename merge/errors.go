package merge

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrHistoryVersionGap means the archived versions for a natural key
// are not the gapless sequence 1..max, so an earlier snapshot was lost.
// Ingestion for that key halts rather than papering over lost audit
// history.
var ErrHistoryVersionGap = errors.New("history version gap detected")

// versionGapError wraps ErrHistoryVersionGap with the key context.
func versionGapError(countyNumber int, parcelID string, maxVersion, count int64) error {
	return fmt.Errorf("parcel %d/%s: %w: max version %d but %d snapshots",
		countyNumber, parcelID, ErrHistoryVersionGap, maxVersion, count)
}

// uniqueViolation is the PostgreSQL error code raised when two writers
// race past the same conflict target. With the ON CONFLICT primitive it
// should not normally occur; when it does the candidate is retried, not
// dropped.
const uniqueViolation = "23505"

// isRetryable reports whether a merge failure is a write-write race
// worth retrying.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation || pqErr.Code.Class() == "40"
	}
	return false
}
