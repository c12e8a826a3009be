package query

import (
	"reflect"
	"testing"

	"github.com/mbannour/go-docmap/docmap"
)

type tripLocation struct {
	City string `docmap:"city"`
	Zip  int    `docmap:"zip"`
}

type tripProfile struct {
	Name string       `docmap:"name"`
	Age  int          `docmap:"age"`
	Home tripLocation `docmap:"home"`
	Tags []string     `docmap:"tags"`
}

// Writing a value under every extracted path and materializing the result
// must reconstruct the record.
func TestExtractedPathsRoundTrip(t *testing.T) {
	docmap.ClearRegistry()

	pairs, err := docmap.Paths[tripProfile]()
	if err != nil {
		t.Fatalf("Paths: %v", err)
	}
	samples := map[string]any{
		"name":      "Ada",
		"age":       30,
		"home.city": "SF",
		"home.zip":  94103,
		"tags":      []string{"vip"},
	}
	if len(pairs) != len(samples) {
		t.Fatalf("got %d paths, want %d", len(pairs), len(samples))
	}

	u := NewUpdate()
	for _, p := range pairs {
		v, ok := samples[p.Target]
		if !ok {
			t.Fatalf("unexpected path %q", p.Target)
		}
		u.Set(p.Target, v)
	}
	doc := map[string]any{}
	if err := u.Apply(doc); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, err := docmap.Materialize[tripProfile](doc)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	want := &tripProfile{
		Name: "Ada",
		Age:  30,
		Home: tripLocation{City: "SF", Zip: 94103},
		Tags: []string{"vip"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

// Resolved paths feed filters directly.
func TestFilterOverConvertedRecord(t *testing.T) {
	docmap.ClearRegistry()

	doc, err := docmap.ToDocument(&tripProfile{
		Name: "Ada",
		Age:  30,
		Home: tripLocation{City: "SF", Zip: 94103},
	})
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}

	city := docmap.MustPath[tripProfile]("Home.City")
	if !Eq(city, "SF").Matches(doc) {
		t.Errorf("filter on resolved path %q should match", city)
	}
	if !And(Gte("age", 21), StartsWith("name", "A")).Matches(doc) {
		t.Error("composite filter should match")
	}
}
