// Package refdes expands and compares reference designator lists such as "R1-R4,C7".
package refdes

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxRangeSize bounds a single expanded range; larger ranges are kept unexpanded.
const MaxRangeSize = 10000

var (
	boundPattern = regexp.MustCompile(`^([A-Za-z]*)(\d+)$`)
	tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// Expand replaces every "PREFIXn-PREFIXm" part of a comma separated list with the
// enumerated designators, counting down when n > m. Parts that are not a valid
// range, or whose prefixes differ, are kept as they are.
func Expand(value string) string {
	parts := strings.Split(value, ",")
	expanded := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		expanded = append(expanded, expandPart(part)...)
	}

	return strings.Join(expanded, ",")
}

func expandPart(part string) []string {
	bounds := strings.Split(part, "-")
	if len(bounds) != 2 {
		return []string{part}
	}

	start := boundPattern.FindStringSubmatch(strings.TrimSpace(bounds[0]))
	end := boundPattern.FindStringSubmatch(strings.TrimSpace(bounds[1]))
	if start == nil || end == nil || start[1] != end[1] {
		return []string{part}
	}

	prefix := start[1]
	from, errFrom := strconv.Atoi(start[2])
	to, errTo := strconv.Atoi(end[2])
	if errFrom != nil || errTo != nil {
		return []string{part}
	}

	// bounds are non-negative, so the span cannot overflow
	step, span := 1, to-from
	if from > to {
		step, span = -1, from-to
	}
	if span >= MaxRangeSize {
		return []string{part}
	}
	result := make([]string, 0, span+1)
	for i := from; ; i += step {
		result = append(result, prefix+strconv.Itoa(i))
		if i == to {
			break
		}
	}
	return result
}

// ExpandIfRange expands value only when it contains a hyphen.
func ExpandIfRange(value string) string {
	if !strings.Contains(value, "-") {
		return value
	}
	return Expand(value)
}

// Tokens splits a designator list on whitespace and commas, keeping only
// [A-Za-z0-9_]+ tokens.
func Tokens(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if tokenPattern.MatchString(f) {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Difference returns the tokens of a that are not in b, deduplicated, in the order of a.
func Difference(a, b []string) []string {
	exclude := make(map[string]bool, len(b))
	for _, t := range b {
		exclude[t] = true
	}

	var result []string
	for _, t := range a {
		if exclude[t] {
			continue
		}
		exclude[t] = true
		result = append(result, t)
	}
	return result
}

// Compare expands both designator lists and reports what was removed and added
// going from left to right.
func Compare(left, right string) (canceled, added []string) {
	leftTokens := Tokens(Expand(left))
	rightTokens := Tokens(Expand(right))
	return Difference(leftTokens, rightTokens), Difference(rightTokens, leftTokens)
}
