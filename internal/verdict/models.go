// Package verdict owns verdict persistence: per-reviewer upsert-by-id
// storage, bulk export/import, and progress aggregation.
package verdict

import (
	"regexp"
	"strings"
	"time"

	dErrors "citadel/pkg/domain-errors"
)

// Verdict is the reviewer's categorical judgment on a record.
type Verdict string

const (
	VerdictFabricated    Verdict = "fabricated"
	VerdictCitationError Verdict = "citation_error"
	VerdictCorrect       Verdict = "correct"
	VerdictUnsure        Verdict = "unsure"
)

// AllVerdicts lists the valid categories in display order.
var AllVerdicts = []Verdict{VerdictFabricated, VerdictCitationError, VerdictCorrect, VerdictUnsure}

// ParseVerdict validates a raw verdict string.
func ParseVerdict(s string) (Verdict, error) {
	v := Verdict(s)
	for _, known := range AllVerdicts {
		if v == known {
			return v, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown verdict %q", s)
}

// Entry is one saved judgment. At most one Entry exists per review_id per
// reviewer; a new save replaces the prior entry and refreshes ReviewedAt.
// PMCID and RefNumber are denormalized copies for export convenience.
type Entry struct {
	ReviewID   int       `json:"review_id"`
	PMCID      string    `json:"pmc_id"`
	RefNumber  int       `json:"ref_number"`
	Verdict    Verdict   `json:"verdict"`
	Notes      string    `json:"notes"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// ExportDocument is the self-describing snapshot a reviewer downloads and
// can later re-import. Verdicts are sorted by review_id ascending.
type ExportDocument struct {
	Reviewer      string        `json:"reviewer"`
	ExportedAt    time.Time     `json:"exported_at"`
	TotalReviewed int           `json:"total_reviewed"`
	Verdicts      []ExportEntry `json:"verdicts"`
}

// ExportEntry is the wire form of an Entry. ReviewedAt stays a string so
// documents from older export versions (which may omit it, or pmc_id and
// ref_number) still import cleanly.
type ExportEntry struct {
	ReviewID   int    `json:"review_id"`
	Verdict    string `json:"verdict"`
	Notes      string `json:"notes"`
	ReviewedAt string `json:"reviewed_at,omitempty"`
	PMCID      string `json:"pmc_id,omitempty"`
	RefNumber  int    `json:"ref_number,omitempty"`
}

// Progress summarizes a reviewer's position through the sample.
type Progress struct {
	Reviewed int             `json:"reviewed"`
	Counts   map[Verdict]int `json:"counts"`
}

var unsafeIdentifierChars = regexp.MustCompile(`[^a-z0-9._-]`)

// NormalizeReviewer maps a free-text name onto the reviewer identifier that
// keys the store: lower-cased, whitespace runs collapsed to underscores,
// anything unsafe for a filename dropped. Returns "" for blank input.
func NormalizeReviewer(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Join(strings.Fields(name), "_")
	return unsafeIdentifierChars.ReplaceAllString(name, "")
}
