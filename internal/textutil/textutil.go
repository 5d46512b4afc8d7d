// Package textutil provides the small text helpers shared by ingestion and
// generation: whitespace normalization, bounded truncation, keyword matching
// and filename timestamps.
package textutil

import (
	"strings"
	"time"
)

// TruncationSuffix marks text that was cut to fit a length budget.
const TruncationSuffix = "..."

// CleanText collapses runs of whitespace into single spaces and trims the
// result.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Truncate cuts text to at most maxLength characters. Text already within
// the budget is returned unchanged; otherwise the result ends with the
// truncation suffix and has length exactly maxLength.
func Truncate(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	if maxLength <= len(TruncationSuffix) {
		return TruncationSuffix[:maxLength]
	}
	return text[:maxLength-len(TruncationSuffix)] + TruncationSuffix
}

// MatchKeywords returns the subset of keywords whose lowercase form appears
// as a substring of the lowercased text, preserving keyword order.
func MatchKeywords(text string, keywords []string) []string {
	lower := strings.ToLower(text)
	matched := []string{}
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// Timestamp formats t for use in filenames.
func Timestamp(t time.Time) string {
	return t.Format("20060102_150405")
}
