package sample

import (
	"fmt"
	"net/url"
	"strings"
)

// Links carries the verification URLs shown next to a record. Reviewers use
// them to establish whether the claimed paper exists; none of them reveal a
// system verdict, so blinding is preserved.
type Links struct {
	SourcePMC     string `json:"source_pmc,omitempty"`
	ClaimedPubMed string `json:"claimed_pubmed,omitempty"`
	ClaimedDOI    string `json:"claimed_doi,omitempty"`

	SearchPubMed      string `json:"search_pubmed"`
	SearchScholar     string `json:"search_scholar"`
	SearchCrossRef    string `json:"search_crossref"`
	SearchOpenAlex    string `json:"search_openalex"`
	SearchFirstAuthor string `json:"search_first_author,omitempty"`
}

// BuildLinks constructs the verification links for a record.
func BuildLinks(r Record) Links {
	l := Links{}

	if r.PMCID != "" {
		l.SourcePMC = fmt.Sprintf("https://www.ncbi.nlm.nih.gov/pmc/articles/%s/", r.PMCID)
	}
	if r.ClaimedPMID != "" {
		l.ClaimedPubMed = fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", r.ClaimedPMID)
	}
	if r.ClaimedDOI != "" {
		l.ClaimedDOI = "https://doi.org/" + r.ClaimedDOI
	}

	title := r.ClaimedTitle
	if len(title) > 200 {
		title = title[:200]
	}
	encoded := url.QueryEscape(title)
	l.SearchPubMed = "https://pubmed.ncbi.nlm.nih.gov/?term=" + encoded
	l.SearchScholar = "https://scholar.google.com/scholar?q=" + encoded
	l.SearchCrossRef = "https://search.crossref.org/?q=" + encoded + "&from_ui=yes"
	l.SearchOpenAlex = "https://openalex.org/works?page=1&filter=title.search%3A" + encoded

	if author := firstAuthor(r.ClaimedAuthors); author != "" {
		year := r.ClaimedYear.Int()
		if year == 0 {
			year = 2024
		}
		l.SearchFirstAuthor = fmt.Sprintf(
			"https://pubmed.ncbi.nlm.nih.gov/?term=%s%%5Bfirst+author%%5D+AND+%d%%3A%d%%5Bdp%%5D",
			url.QueryEscape(author), year-1, year+1,
		)
	}

	return l
}

// firstAuthor extracts the family name of the first author from the
// semicolon-separated authors field ("Smith, J; Doe, A" -> "Smith").
func firstAuthor(authors string) string {
	if authors == "" {
		return ""
	}
	first := authors
	if i := strings.IndexByte(first, ';'); i >= 0 {
		first = first[:i]
	}
	if i := strings.IndexByte(first, ','); i >= 0 {
		first = first[:i]
	}
	return strings.TrimSpace(first)
}
