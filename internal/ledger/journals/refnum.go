package journals

import (
	"fmt"
	"strconv"
	"strings"
)

// Reference numbers follow JE-{year}-{sequence}, e.g. JE-2026-0042.
// The sequence restarts at 1 each calendar year per company and is
// derived from the highest persisted sequence, so deleted drafts leave
// gaps instead of reused numbers.

const referenceTag = "JE"

// FormatReference renders a reference number for a year and sequence.
func FormatReference(year, sequence int) string {
	return fmt.Sprintf("%s-%04d-%04d", referenceTag, year, sequence)
}

// ReferencePrefix returns the per-year prefix used for max-sequence
// lookups, e.g. "JE-2026-".
func ReferencePrefix(year int) string {
	return fmt.Sprintf("%s-%04d-", referenceTag, year)
}

// SequenceFromReference parses the trailing sequence of a reference
// number. Malformed references yield an error rather than zero so
// corrupt rows surface during generation.
func SequenceFromReference(ref string) (int, error) {
	parts := strings.Split(ref, "-")
	if len(parts) != 3 || parts[0] != referenceTag {
		return 0, fmt.Errorf("journals: malformed reference %q", ref)
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil || seq < 0 {
		return 0, fmt.Errorf("journals: malformed reference sequence %q", ref)
	}
	return seq, nil
}
