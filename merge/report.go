package merge

import "fmt"

// Outcome is the terminal state of one candidate's merge.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeUpdated
	OutcomeUnchanged
	OutcomeFailed
)

// Failure records one candidate that could not be merged, keyed by the
// natural key so operators can trace it back to the source row.
type Failure struct {
	ParcelID     string `json:"parcel_id"`
	CountyNumber int    `json:"county_number"`
	Error        string `json:"error"`
}

// Report is the operational contract of a merge batch: outcome counts
// plus the per-record failures. Orchestrating CLIs and schedulers key
// off these numbers.
type Report struct {
	BatchID    string    `json:"batch_id"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Unchanged  int       `json:"unchanged"`
	Failed     int       `json:"failed"`
	Unresolved int       `json:"county_unresolved"`
	Failures   []Failure `json:"failures,omitempty"`
}

// Total returns the number of candidates the batch attempted.
func (r *Report) Total() int {
	return r.Created + r.Updated + r.Unchanged + r.Failed
}

// record tallies one candidate outcome.
func (r *Report) record(o Outcome) {
	switch o {
	case OutcomeCreated:
		r.Created++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeUnchanged:
		r.Unchanged++
	case OutcomeFailed:
		r.Failed++
	}
}

// fail tallies a failed candidate with its error.
func (r *Report) fail(parcelID string, countyNumber int, err error) {
	r.Failed++
	r.Failures = append(r.Failures, Failure{
		ParcelID:     parcelID,
		CountyNumber: countyNumber,
		Error:        err.Error(),
	})
}

// Summary renders the one-line operator summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("created=%d updated=%d unchanged=%d failed=%d county_unresolved=%d",
		r.Created, r.Updated, r.Unchanged, r.Failed, r.Unresolved)
}
