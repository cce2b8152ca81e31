package core

import "testing"

func TestLevelOrdering(t *testing.T) {
	levels := []Level{Verbose, Debug, Information, Warning, Error, Fatal}
	for i := 1; i < len(levels); i++ {
		if !(levels[i-1] < levels[i]) {
			t.Fatalf("%v should sort before %v", levels[i-1], levels[i])
		}
	}
}

func TestParseLevelRoundTrip(t *testing.T) {
	levels := []Level{Verbose, Debug, Information, Warning, Error, Fatal}
	for _, l := range levels {
		got, ok := ParseLevel(l.String())
		if !ok || got != l {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v, true", l.String(), got, ok, l)
		}
		got, ok = ParseLevel(l.Short())
		if !ok || got != l {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v, true", l.Short(), got, ok, l)
		}
	}
}

func TestParseLevelUnknown(t *testing.T) {
	if _, ok := ParseLevel("nonsense"); ok {
		t.Fatal("expected ParseLevel to reject an unknown name")
	}
}

func TestParseLevelCaseInsensitiveAndTrimmed(t *testing.T) {
	got, ok := ParseLevel("  WARN  ")
	if !ok || got != Warning {
		t.Fatalf("ParseLevel(\"  WARN  \") = %v, %v; want Warning, true", got, ok)
	}
}
