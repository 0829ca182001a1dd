package entities

// Candidate is one matched, not-yet-selected element handle. The concrete
// handle type belongs to the backend that produced it (a playwright locator,
// a selenium web element, a test double); the core only carries it around and
// hands it back for attribute probes and actions. Candidates live for a
// single resolution operation and are never mutated.
type Candidate struct {
	Handle any `json:"-"`
	// Index is the candidate's position in document order within the query
	// that produced it.
	Index int `json:"index"`
}
