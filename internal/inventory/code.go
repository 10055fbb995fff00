// Package inventory holds the asset rules that do not depend on storage:
// code generation, audit diffs, import reconciliation, search and statistics.
package inventory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrIncompleteCode is returned when year, location or category is missing.
var ErrIncompleteCode = errors.New("year, location and category are required to build an asset code")

// CodePrefix joins the three components of an asset code.
func CodePrefix(year, location, category string) string {
	return fmt.Sprintf("%s-%s-%s", strings.TrimSpace(year), strings.TrimSpace(location), strings.TrimSpace(category))
}

// NextCode returns the next free code for the year/location/category prefix.
// The sequence is the highest trailing number among existing codes with the
// same prefix, plus one, padded to four digits.
func NextCode(year, location, category string, existing []string) (string, error) {
	if strings.TrimSpace(year) == "" || strings.TrimSpace(location) == "" || strings.TrimSpace(category) == "" {
		return "", ErrIncompleteCode
	}
	prefix := CodePrefix(year, location, category)

	maxSeq := 0
	for _, code := range existing {
		if !strings.HasPrefix(code, prefix+"-") {
			continue
		}
		if seq := trailingSequence(code); seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("%s-%04d", prefix, maxSeq+1), nil
}

// trailingSequence parses the segment after the last hyphen. Non-numeric
// segments count as zero.
func trailingSequence(code string) int {
	idx := strings.LastIndex(code, "-")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(code[idx+1:])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
