// Package vendormatch decides which known vendor a bill's OCR text refers
// to, with a confidence score and match classification.
//
// Matching is multi-pass: exact equality wins outright, then a token-order
// insensitive fuzzy pass, then a substring-containment partial pass. All
// passes share a single admission threshold.
package vendormatch

import (
	"regexp"
	"strings"
)

// DefaultThreshold is the minimum acceptable match score on the 0-100 scale.
const DefaultThreshold = 80

// Kind classifies how a vendor match was obtained.
type Kind string

const (
	KindExact   Kind = "exact"
	KindFuzzy   Kind = "fuzzy"
	KindPartial Kind = "partial"
	KindNoMatch Kind = "no_match"
)

// VendorCatalogEntry is a point-in-time snapshot of one known vendor. It is
// constructed once at the boundary; the matcher never probes caller types.
type VendorCatalogEntry struct {
	ID   string
	Name string
}

// Result is the match decision for one text against one catalog snapshot.
// VendorID is empty when Kind is no_match; Score is the best score seen even
// then.
type Result struct {
	VendorID      string  `json:"vendor_id,omitempty"`
	MatchedName   string  `json:"matched_name,omitempty"`
	CandidateText string  `json:"candidate_text,omitempty"`
	Score         float64 `json:"score"`
	Kind          Kind    `json:"kind"`
}

// vendorKeywordLine captures the text following a vendor-indicating keyword.
var vendorKeywordLine = regexp.MustCompile(`(?i)\b(?:vendor|supplier|from|to|company|store|shop)\b[:\s]*(.+)$`)

var hasLetter = regexp.MustCompile(`[A-Za-z]`)

// Match scores text against the vendor catalog. Threshold <= 0 falls back to
// DefaultThreshold.
func Match(text string, catalog []VendorCatalogEntry, threshold float64) Result {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	noMatch := Result{Kind: KindNoMatch}

	if strings.TrimSpace(text) == "" || len(catalog) == 0 {
		return noMatch
	}

	candidates := candidateLines(text)
	if len(candidates) == 0 {
		return noMatch
	}

	// Pass 1: exact case-normalized equality wins immediately.
	for _, cand := range candidates {
		for _, entry := range catalog {
			if strings.EqualFold(strings.TrimSpace(cand), strings.TrimSpace(entry.Name)) {
				return Result{
					VendorID:      entry.ID,
					MatchedName:   entry.Name,
					CandidateText: cand,
					Score:         100,
					Kind:          KindExact,
				}
			}
		}
	}

	// Pass 2: token-order insensitive fuzzy scoring over all pairs.
	best := noMatch
	for _, cand := range candidates {
		for _, entry := range catalog {
			score := tokenSortRatio(cand, entry.Name)
			if score > best.Score {
				best = Result{
					VendorID:      entry.ID,
					MatchedName:   entry.Name,
					CandidateText: cand,
					Score:         score,
					Kind:          KindFuzzy,
				}
			}
		}
	}
	if best.Score >= threshold {
		return best
	}

	// Pass 3: containment-gated partial scoring catches truncated names.
	partialBest := best
	for _, cand := range candidates {
		candLower := strings.ToLower(cand)
		for _, entry := range catalog {
			nameLower := strings.ToLower(entry.Name)
			if !strings.Contains(candLower, nameLower) && !strings.Contains(nameLower, candLower) {
				continue
			}
			score := partialRatio(cand, entry.Name)
			if score > partialBest.Score {
				partialBest = Result{
					VendorID:      entry.ID,
					MatchedName:   entry.Name,
					CandidateText: cand,
					Score:         score,
					Kind:          KindPartial,
				}
			}
		}
	}
	if partialBest.Score >= threshold && partialBest.Kind == KindPartial {
		return partialBest
	}

	// Nothing cleared the threshold; report the best score seen.
	return Result{Score: partialBest.Score, Kind: KindNoMatch}
}

// SimpleMatch is the substring-containment fallback used when fuzzy matching
// is disabled. Same kind taxonomy, lower precision: a line equal to a catalog
// name scores 100 exact, a name contained anywhere in the text scores 90
// partial.
func SimpleMatch(text string, catalog []VendorCatalogEntry) Result {
	if strings.TrimSpace(text) == "" || len(catalog) == 0 {
		return Result{Kind: KindNoMatch}
	}

	lines := strings.Split(text, "\n")
	textLower := strings.ToLower(text)

	for _, entry := range catalog {
		if strings.TrimSpace(entry.Name) == "" {
			continue
		}
		for _, line := range lines {
			if strings.EqualFold(strings.TrimSpace(line), strings.TrimSpace(entry.Name)) {
				return Result{
					VendorID:      entry.ID,
					MatchedName:   entry.Name,
					CandidateText: strings.TrimSpace(line),
					Score:         100,
					Kind:          KindExact,
				}
			}
		}
		if strings.Contains(textLower, strings.ToLower(entry.Name)) {
			return Result{
				VendorID:    entry.ID,
				MatchedName: entry.Name,
				Score:       90,
				Kind:        KindPartial,
			}
		}
	}
	return Result{Kind: KindNoMatch}
}

// candidateLines derives the vendor-name substrings to score: text after
// vendor keywords first, then any short alphabetic line, then the first few
// lines of the document.
func candidateLines(text string) []string {
	lines := strings.Split(text, "\n")

	var fromKeywords []string
	for _, line := range lines {
		if m := vendorKeywordLine.FindStringSubmatch(line); m != nil {
			cand := strings.Trim(m[1], " :\t")
			if cand != "" {
				fromKeywords = append(fromKeywords, cand)
			}
		}
	}

	var shortLines []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) > 2 && len(line) < 100 && hasLetter.MatchString(line) {
			shortLines = append(shortLines, line)
		}
	}

	// Keyword candidates are strongest but short lines still participate:
	// garbled labels must not shadow a clean header line.
	candidates := append(fromKeywords, shortLines...)
	if len(candidates) > 0 {
		return candidates
	}

	var firstLines []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			firstLines = append(firstLines, line)
		}
		if len(firstLines) == 5 {
			break
		}
	}
	return firstLines
}
