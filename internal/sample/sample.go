// Package sample loads the pre-generated review sample: the ordered set of
// citation records reviewers judge. The sample is prepared offline and is
// read-only for the lifetime of the process.
package sample

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Record is one stratified citation to be judged. The claimed_* fields are
// what the citing paper asserts; the actual_* fields, when present, describe
// what the claimed identifiers really resolve to. Optional fields are empty
// strings when absent in the source document.
type Record struct {
	ReviewID   int    `json:"review_id"`
	RefNumber  int    `json:"ref_number"`
	PMCID      string `json:"pmc_id"`
	PaperTitle string `json:"paper_title"`
	Journal    string `json:"journal"`

	ClaimedTitle   string `json:"claimed_title"`
	ClaimedPMID    string `json:"claimed_pmid"`
	ClaimedDOI     string `json:"claimed_doi"`
	ClaimedAuthors string `json:"claimed_authors"`
	ClaimedVenue   string `json:"claimed_venue"`
	ClaimedYear    Year   `json:"claimed_year"`

	ActualTitlePMID string `json:"actual_title_pmid,omitempty"`
	ActualTitleDOI  string `json:"actual_title_doi,omitempty"`
}

// Year tolerates the loosely typed source data, where claimed_year appears
// both as a JSON number and as a string.
type Year string

func (y *Year) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		s = ""
	}
	*y = Year(s)
	return nil
}

func (y Year) String() string { return string(y) }

// Int returns the numeric year, or 0 if the field is absent or non-numeric.
func (y Year) Int() int {
	n, err := strconv.Atoi(string(y))
	if err != nil {
		return 0
	}
	return n
}

// Collection is the immutable, ordered review sample. Index positions are
// zero-based; review IDs are one-based and unique.
type Collection struct {
	records []Record
	byID    map[int]int // review_id -> index
}

// Load parses the sample document at path. Any failure here is fatal to the
// caller: with no records there is nothing to review.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read review sample: %w", err)
	}
	return Parse(data)
}

// Parse builds a Collection from raw JSON, validating record identity.
func Parse(data []byte) (*Collection, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse review sample: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("review sample is empty")
	}

	byID := make(map[int]int, len(records))
	for i, r := range records {
		if r.ReviewID <= 0 {
			return nil, fmt.Errorf("record at index %d: review_id must be positive, got %d", i, r.ReviewID)
		}
		if _, dup := byID[r.ReviewID]; dup {
			return nil, fmt.Errorf("duplicate review_id %d", r.ReviewID)
		}
		byID[r.ReviewID] = i
	}

	return &Collection{records: records, byID: byID}, nil
}

// Total returns the number of records in the sample.
func (c *Collection) Total() int { return len(c.records) }

// At returns the record at the zero-based index. Callers are expected to
// keep indices in range; navigation clamps before lookup.
func (c *Collection) At(index int) Record { return c.records[index] }

// ByID looks up a record by its review_id.
func (c *Collection) ByID(reviewID int) (Record, bool) {
	i, ok := c.byID[reviewID]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}

// Has reports whether reviewID exists in the sample.
func (c *Collection) Has(reviewID int) bool {
	_, ok := c.byID[reviewID]
	return ok
}
