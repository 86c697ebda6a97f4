package core

import (
	"fmt"
	"strings"
)

// Feature is an optional front-end capability. The plain ledger (add, list,
// delete, summary) is always available.
type Feature string

const (
	FeatureTags       Feature = "tags"
	FeatureCategories Feature = "categories"
	FeatureFilter     Feature = "filter"
	FeatureExport     Feature = "export"
)

// AllFeatures lists every optional capability.
func AllFeatures() []Feature {
	return []Feature{FeatureTags, FeatureCategories, FeatureFilter, FeatureExport}
}

// Features is the set of enabled capabilities.
type Features map[Feature]bool

// ParseFeatures reads a comma separated feature list. "all" enables every
// feature. "none" disables them and must stand alone.
func ParseFeatures(s string) (Features, error) {
	var names []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			names = append(names, name)
		}
	}

	f := Features{}
	for _, name := range names {
		switch name {
		case "none":
			if len(names) > 1 {
				return nil, fmt.Errorf("%q cannot be combined with other features", name)
			}
		case "all":
			for _, feat := range AllFeatures() {
				f[feat] = true
			}
		default:
			feat := Feature(name)
			if !feat.valid() {
				return nil, fmt.Errorf("unknown feature %q", name)
			}
			f[feat] = true
		}
	}
	return f, nil
}

func (f Feature) valid() bool {
	for _, known := range AllFeatures() {
		if f == known {
			return true
		}
	}
	return false
}

// Enabled reports whether feat is switched on.
func (f Features) Enabled(feat Feature) bool {
	return f[feat]
}

// Require returns ErrFeatureDisabled wrapped with the feature name when feat
// is off.
func (f Features) Require(feat Feature) error {
	if !f.Enabled(feat) {
		return fmt.Errorf("%s: %w", feat, ErrFeatureDisabled)
	}
	return nil
}

func (f Features) String() string {
	var names []string
	for _, feat := range AllFeatures() {
		if f[feat] {
			names = append(names, string(feat))
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}
