package query

import (
	"testing"
	"time"
)

func sampleDoc() map[string]any {
	return map[string]any{
		"name":  "Alice",
		"age":   int64(30),
		"score": 4.5,
		"joined": time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		"address": map[string]any{
			"c":   "NY",
			"zip": 10001,
		},
	}
}

func TestLookup(t *testing.T) {
	doc := sampleDoc()

	tests := []struct {
		path   string
		want   any
		wantOK bool
	}{
		{path: "name", want: "Alice", wantOK: true},
		{path: "address.c", want: "NY", wantOK: true},
		{path: "address.zip", want: 10001, wantOK: true},
		{path: "address.missing", wantOK: false},
		{path: "name.sub", wantOK: false},
		{path: "nope", wantOK: false},
		{path: "", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := Lookup(doc, tt.path)
		if ok != tt.wantOK {
			t.Errorf("%q: ok got %v, want %v", tt.path, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestEq(t *testing.T) {
	doc := sampleDoc()

	if !Eq("name", "Alice").Matches(doc) {
		t.Error("name == Alice should match")
	}
	if Eq("name", "Bob").Matches(doc) {
		t.Error("name == Bob should not match")
	}
	if !Eq("address.c", "NY").Matches(doc) {
		t.Error("dotted path should match")
	}
	if Eq("missing", 1).Matches(doc) {
		t.Error("missing path should not match")
	}

	// Wire decoders hand back int64; declared widths must not matter
	if !Eq("age", 30).Matches(doc) {
		t.Error("int should compare equal to int64")
	}
	if !Eq("age", 30.0).Matches(doc) {
		t.Error("float should compare equal to int64")
	}
}

func TestNe(t *testing.T) {
	doc := sampleDoc()

	if !Ne("name", "Bob").Matches(doc) {
		t.Error("name != Bob should match")
	}
	if Ne("name", "Alice").Matches(doc) {
		t.Error("name != Alice should not match")
	}
	if !Ne("missing", 1).Matches(doc) {
		t.Error("missing path should satisfy !=")
	}
}

func TestOrdering(t *testing.T) {
	doc := sampleDoc()

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{name: "gt int", filter: Gt("age", 29), want: true},
		{name: "gt equal", filter: Gt("age", 30), want: false},
		{name: "gte equal", filter: Gte("age", 30), want: true},
		{name: "lt float", filter: Lt("score", 5.0), want: true},
		{name: "lte equal float", filter: Lte("score", 4.5), want: true},
		{name: "int against float", filter: Gt("score", 4), want: true},
		{name: "string order", filter: Gt("name", "Aaron"), want: true},
		{name: "time after", filter: Gt("joined", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), want: true},
		{name: "time before", filter: Lt("joined", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)), want: true},
		{name: "incomparable", filter: Gt("name", 5), want: false},
		{name: "missing path", filter: Gt("nope", 1), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(doc); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStringFilters(t *testing.T) {
	doc := sampleDoc()

	if !Contains("name", "lic").Matches(doc) {
		t.Error("contains should match")
	}
	if Contains("name", "xyz").Matches(doc) {
		t.Error("contains should not match")
	}
	if !StartsWith("address.c", "N").Matches(doc) {
		t.Error("prefix should match")
	}
	if StartsWith("age", "3").Matches(doc) {
		t.Error("non-string value should not match")
	}
	if Contains("missing", "a").Matches(doc) {
		t.Error("missing path should not match")
	}
}

func TestMembership(t *testing.T) {
	doc := sampleDoc()

	if !In("address.c", "LA", "NY").Matches(doc) {
		t.Error("In should match")
	}
	if In("address.c", "LA", "SF").Matches(doc) {
		t.Error("In should not match")
	}
	if !NotIn("address.c", "LA", "SF").Matches(doc) {
		t.Error("NotIn should match")
	}
	if In("missing", 1).Matches(doc) {
		t.Error("In on missing path should not match")
	}
	if !NotIn("missing", 1).Matches(doc) {
		t.Error("NotIn on missing path should match")
	}
	if !In("age", 29, 30).Matches(doc) {
		t.Error("numeric membership should ignore widths")
	}
}

func TestExistence(t *testing.T) {
	doc := sampleDoc()

	if !Exists("address.zip").Matches(doc) {
		t.Error("Exists should match")
	}
	if Exists("address.country").Matches(doc) {
		t.Error("Exists should not match")
	}
	if !NotExists("address.country").Matches(doc) {
		t.Error("NotExists should match")
	}
}

func TestCombinators(t *testing.T) {
	doc := sampleDoc()

	if !And(Eq("name", "Alice"), Gt("age", 20)).Matches(doc) {
		t.Error("And should match")
	}
	if And(Eq("name", "Alice"), Gt("age", 40)).Matches(doc) {
		t.Error("And should not match")
	}
	if !And().Matches(doc) {
		t.Error("empty And should match everything")
	}

	if !Or(Eq("name", "Bob"), Eq("name", "Alice")).Matches(doc) {
		t.Error("Or should match")
	}
	if Or(Eq("name", "Bob"), Eq("name", "Carol")).Matches(doc) {
		t.Error("Or should not match")
	}
	if Or().Matches(doc) {
		t.Error("empty Or should match nothing")
	}

	if !Not(Eq("name", "Bob")).Matches(doc) {
		t.Error("Not should match")
	}
	if Not(Eq("name", "Alice")).Matches(doc) {
		t.Error("Not should not match")
	}
}

func TestAnd_Flattens(t *testing.T) {
	f := And(And(Eq("a", 1), Eq("b", 2)), Eq("c", 3))
	af, ok := f.(*AndFilter)
	if !ok {
		t.Fatalf("expected *AndFilter, got %T", f)
	}
	if len(af.Filters) != 3 {
		t.Errorf("nested ANDs should flatten: got %d filters, want 3", len(af.Filters))
	}
}
