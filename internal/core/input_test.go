package core

import (
	"reflect"
	"testing"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-03-01", "2024-03-01", true},
		{" 2024-12-31 ", "2024-12-31", true},
		{"03/01/2024", "2024-03-01", true},
		{"March 1, 2024", "2024-03-01", true},
		{"", "", false},
		{"yesterday-ish", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: want %s, got %s (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error, got %s", tc.in, got)
		}
	}
}

func TestParseTags(t *testing.T) {
	got := ParseTags(" lunch, work,,lunch , ")
	want := []string{"lunch", "work"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	if got := ParseTags(""); len(got) != 0 {
		t.Fatalf("expected no tags, got %v", got)
	}
}

func TestParseFeatures(t *testing.T) {
	f, err := ParseFeatures("all")
	if err != nil {
		t.Fatal(err)
	}
	for _, feat := range AllFeatures() {
		if !f.Enabled(feat) {
			t.Fatalf("%s should be enabled", feat)
		}
	}

	f, err = ParseFeatures("tags, export")
	if err != nil {
		t.Fatal(err)
	}
	if !f.Enabled(FeatureTags) || f.Enabled(FeatureFilter) {
		t.Fatalf("unexpected features %s", f)
	}
	if f.String() != "tags,export" {
		t.Fatalf("unexpected string %q", f.String())
	}
	if err := f.Require(FeatureCategories); err == nil {
		t.Fatal("expected disabled categories")
	}

	none, err := ParseFeatures("none")
	if err != nil || none.String() != "none" {
		t.Fatalf("unexpected none parse: %v %v", none, err)
	}

	if _, err := ParseFeatures("charts"); err == nil {
		t.Fatal("expected unknown feature error")
	}
}

func TestParseFeaturesNoneStandsAlone(t *testing.T) {
	for _, in := range []string{"tags,none", "none,tags", "none, all", " none , none"} {
		if f, err := ParseFeatures(in); err == nil {
			t.Errorf("ParseFeatures(%q) = %s, want error", in, f)
		}
	}

	f, err := ParseFeatures(" NONE ")
	if err != nil || len(f) != 0 {
		t.Fatalf("lone none: %v %v", f, err)
	}
}
