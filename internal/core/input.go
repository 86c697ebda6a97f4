package core

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const isoDate = "2006-01-02"

// ParseDate accepts loosely formatted dates ("2024-03-01", "03/01/2024",
// "March 1, 2024", ...) and returns the ISO form stored in the ledger.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidDate
	}
	if t, err := time.Parse(isoDate, s); err == nil {
		return t.Format(isoDate), nil
	}
	t, err := dateparse.ParseIn(s, time.Local)
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format(isoDate), nil
}

// Today returns the current local date in ISO form.
func Today() string {
	return time.Now().Format(isoDate)
}

// ParseTags splits a comma separated list, trimming blanks and dropping
// duplicates while keeping first-seen order.
func ParseTags(s string) []string {
	return NormalizeNames(strings.Split(s, ","))
}

// NormalizeNames trims each name and drops blanks and duplicates.
func NormalizeNames(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
