package render

import (
	"testing"

	"github.com/quill-log/quill/core"
)

func TestRenderSubstitutesNamedHoles(t *testing.T) {
	got := Render("user {name} logged in from {ip}", []core.Property{
		{Name: "name", Value: core.FromString("alice")},
		{Name: "ip", Value: core.FromString("10.0.0.1")},
	})
	want := "user alice logged in from 10.0.0.1"
	if got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestRenderLeavesUnmatchedHolesVerbatim(t *testing.T) {
	got := Render("hello {name}", nil)
	if got != "hello {name}" {
		t.Fatalf("Render() = %q, want hello {name}", got)
	}
}

func TestRenderTreatsDoubleBracesAsLiteral(t *testing.T) {
	got := Render("{{literal}} {value}", []core.Property{{Name: "value", Value: core.FromInt(7)}})
	if got != "{literal} 7" {
		t.Fatalf("Render() = %q, want {literal} 7", got)
	}
}

func TestRenderIgnoresPropertiesWithoutMatchingHole(t *testing.T) {
	got := Render("static message", []core.Property{{Name: "unused", Value: core.FromString("x")}})
	if got != "static message" {
		t.Fatalf("Render() = %q, want unchanged template", got)
	}
}

func TestRenderIsPureAcrossRepeatedCalls(t *testing.T) {
	props := []core.Property{{Name: "n", Value: core.FromInt(1)}}
	first := Render("count={n}", props)
	second := Render("count={n}", props)
	if first != second {
		t.Fatalf("Render() not stable across calls: %q vs %q", first, second)
	}
}

func TestRenderFormatsEachJSONKindShort(t *testing.T) {
	cases := []struct {
		name string
		v    core.JSONValue
		want string
	}{
		{"bool true", core.FromBool(true), "true"},
		{"bool false", core.FromBool(false), "false"},
		{"int", core.FromInt(42), "42"},
		{"float", core.FromFloat(1.5), "1.5"},
		{"string", core.FromString("x"), "x"},
		{"null", core.Null(), "null"},
		{"array", core.FromArray(core.FromInt(1)), "<complex>"},
	}
	for _, tc := range cases {
		got := Render("{v}", []core.Property{{Name: "v", Value: tc.v}})
		if got != tc.want {
			t.Errorf("%s: Render() = %q, want %q", tc.name, got, tc.want)
		}
	}
}
