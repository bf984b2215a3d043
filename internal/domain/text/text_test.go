package text

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"Mice in KITCHEN", []string{"mice", "in", "kitchen"}},
		{"cold-food, 41°F!", []string{"cold", "food", "41", "f"}},
		{"?!...", []string{}},
		{"café crème", []string{"café", "crème"}},
		{"raw_chicken", []string{"raw", "chicken"}},
	}
	for _, tc := range tests {
		got := Tokenize(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Raw Chicken, served!", "raw chicken served"},
		{"Hot_holding: 135°F", "hot_holding 135f"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSplitSentences_KeepsPositions(t *testing.T) {
	got := SplitSentences("The food was great but I saw a rat. Dirty!! ok")
	want := []string{"The food was great but I saw a rat", "Dirty", "ok"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitSentences = %q, want %q", got, want)
	}

	got = SplitSentences("Roaches in the bathroom.")
	if len(got) != 2 || got[1] != "" {
		t.Errorf("expected trailing empty piece, got %q", got)
	}
}

func TestTagger_Tag(t *testing.T) {
	tagger := NewTagger(nil)
	tests := []struct {
		in   string
		want []string
	}{
		{"i saw a rat near the raw chicken", []string{"pests", "contamination"}},
		{"food was cold", []string{"temperature"}},
		{"best pizza in town", nil},
		// substring semantics: "refrigeration" contains "rat"
		{"improper refrigeration of raw fish", []string{"pests", "temperature", "contamination"}},
	}
	for _, tc := range tests {
		if got := tagger.Tag(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Tag(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTagger_CustomCategories(t *testing.T) {
	tagger := NewTagger([]Category{{Name: "allergens", Keywords: []string{"peanut"}}})
	if got := tagger.Tag("contains peanuts"); !reflect.DeepEqual(got, []string{"allergens"}) {
		t.Errorf("Tag = %v", got)
	}
	if len(tagger.Categories()) != 1 {
		t.Errorf("expected 1 category, got %d", len(tagger.Categories()))
	}
}
