package ocr

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// billNumberPatterns are tried in order; the first match wins. List order is
// priority order, not best-score.
var billNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bill\s*(?:number|no|#|num)[\s:]*([A-Za-z0-9\-/]+)`),
	regexp.MustCompile(`(?i)invoice\s*(?:number|no|#|num)[\s:]*([A-Za-z0-9\-/]+)`),
	regexp.MustCompile(`(?i)bill[\s:]+([A-Za-z0-9\-/]+)`),
	regexp.MustCompile(`(?i)invoice[\s:]+([A-Za-z0-9\-/]+)`),
	regexp.MustCompile(`(?i)\bno[.\s:]+([A-Za-z0-9\-/]+)`),
}

// standaloneBillNumber catches short letter-prefixed tokens like "AB-1234"
// when no labeled form is present.
var standaloneBillNumber = regexp.MustCompile(`(?i)\b([A-Za-z]{1,5}[-/]?\d{2,10})\b`)

// ExtractBillNumber returns the bill/invoice number candidate from text.
func ExtractBillNumber(text string) (string, bool) {
	for _, p := range billNumberPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.ToUpper(strings.TrimSpace(m[1])), true
		}
	}
	if m := standaloneBillNumber.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(strings.TrimSpace(m[1])), true
	}
	return "", false
}

var amountPatterns = []*regexp.Regexp{
	// label before the number: "Grand Total: Rs 1,234.50"
	regexp.MustCompile(`(?i)(?:grand\s*total|amount\s*due|final\s*amount|total|amount|payable)[\s:]*(?:rs\.?|inr|₹|\$)?\s*(\d+(?:\.\d+)?)`),
	// number before the label on the same line: "500.00 TOTAL"
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)[ \t]*(?:grand\s*total|total|amount|payable)`),
	// currency-prefixed numbers anywhere: "₹ 500", "Rs. 250.00"
	regexp.MustCompile(`(?i)(?:rs\.?|inr|₹|\$)\s*(\d{1,10}(?:\.\d{1,2})?)`),
}

// ExtractAmount returns the bill total candidate. Every positive number found
// by a labeled or currency-prefixed pattern is a candidate and the maximum is
// returned, since the grand total is typically the largest figure on a bill.
// Bare unlabeled digit runs are ignored so dates and bill numbers cannot
// outrank the total.
func ExtractAmount(text string) (float64, bool) {
	clean := strings.ReplaceAll(text, ",", "")

	best := 0.0
	found := false
	for _, p := range amountPatterns {
		for _, m := range p.FindAllStringSubmatch(clean, -1) {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil || v <= 0 {
				continue
			}
			if !found || v > best {
				best = v
				found = true
			}
		}
	}
	return best, found
}

// dateStrategy is one named, independently testable date extraction rule.
type dateStrategy struct {
	name    string
	pattern *regexp.Regexp
	// parse converts the submatch groups to a date, reporting false when the
	// candidate is not a valid calendar date.
	parse func(groups []string) (time.Time, bool)
}

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var dateStrategies = []dateStrategy{
	{
		name:    "day-month-year",
		pattern: regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`),
		parse: func(g []string) (time.Time, bool) {
			return calendarDate(g[3], g[2], g[1])
		},
	},
	{
		name:    "year-month-day",
		pattern: regexp.MustCompile(`\b(\d{4})[/-](\d{1,2})[/-](\d{1,2})\b`),
		parse: func(g []string) (time.Time, bool) {
			return calendarDate(g[1], g[2], g[3])
		},
	},
	{
		name:    "labeled-date",
		pattern: regexp.MustCompile(`(?i)date[\s:]*(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`),
		parse: func(g []string) (time.Time, bool) {
			return calendarDate(g[3], g[2], g[1])
		},
	},
	{
		name:    "day-monthname-year",
		pattern: regexp.MustCompile(`(?i)\b(\d{1,2})\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s+(\d{2,4})\b`),
		parse: func(g []string) (time.Time, bool) {
			month, ok := monthsByPrefix[strings.ToLower(g[2])]
			if !ok {
				return time.Time{}, false
			}
			day, _ := strconv.Atoi(g[1])
			year, _ := strconv.Atoi(g[3])
			return validDate(normalizeYear(year), month, day)
		},
	},
}

// ExtractDate returns the first valid calendar date found, trying strategies
// in priority order and matches left to right. Invalid candidates (day 32,
// month 13) are skipped, not fatal. Two-digit years are assumed 2000-2099.
func ExtractDate(text string) (time.Time, bool) {
	for _, s := range dateStrategies {
		for _, m := range s.pattern.FindAllStringSubmatch(text, -1) {
			if d, ok := s.parse(m); ok {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

func calendarDate(yearStr, monthStr, dayStr string) (time.Time, bool) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, false
	}
	return validDate(normalizeYear(year), time.Month(month), day)
}

func normalizeYear(year int) int {
	if year < 100 {
		return year + 2000
	}
	return year
}

// validDate builds a UTC date and rejects values time.Date would normalize
// (e.g. day 32 rolling into the next month).
func validDate(year int, month time.Month, day int) (time.Time, bool) {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// vendorSkipWords mark header lines that are not vendor names.
var vendorSkipWords = []string{"bill", "invoice", "tax", "gst", "date", "amount"}

// corporateSuffixes strongly indicate a company-name line.
var corporateSuffixes = []string{"Ltd", "Limited", "Pvt", "Pvt.", "Corp", "Corporation", "Inc"}

var (
	startsWithDigit = regexp.MustCompile(`^\d`)
	alphabeticLine  = regexp.MustCompile(`^[A-Za-z\s&]+$`)
)

// ExtractVendorName scans the first 10 lines for the vendor/company name.
// Lines with obvious non-vendor keywords are skipped; a corporate suffix wins
// outright; known catalog names are preferred over raw lines. Best-effort.
func ExtractVendorName(text string, knownNames []string) (string, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || containsAnyFold(line, vendorSkipWords) {
			continue
		}

		for _, suffix := range corporateSuffixes {
			if strings.Contains(line, suffix) {
				return line, true
			}
		}

		if len(line) <= 5 || startsWithDigit.MatchString(line) {
			continue
		}

		lower := strings.ToLower(line)
		for _, name := range knownNames {
			if name != "" && strings.Contains(lower, strings.ToLower(name)) {
				return name, true
			}
		}

		head := line
		if len(head) > 50 {
			head = head[:50]
		}
		if alphabeticLine.MatchString(head) {
			if len(line) > 100 {
				line = line[:100]
			}
			return line, true
		}
	}
	return "", false
}

func containsAnyFold(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// ExtractAll runs every extractor independently and assembles the result.
// Partial results are valid; extraction never fails outright.
func ExtractAll(text string, knownNames []string) ParsedBillFields {
	var fields ParsedBillFields

	if v, ok := ExtractBillNumber(text); ok {
		fields.BillNumber = &v
	}
	if v, ok := ExtractAmount(text); ok {
		fields.Amount = &v
	}
	if v, ok := ExtractDate(text); ok {
		fields.Date = &v
	}
	if v, ok := ExtractVendorName(text, knownNames); ok {
		fields.VendorName = &v
	}
	return fields
}
