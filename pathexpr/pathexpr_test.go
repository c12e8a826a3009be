package pathexpr

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		want    []string
		wantErr bool
	}{
		{
			name: "single hop",
			expr: "Name",
			want: []string{"Name"},
		},
		{
			name: "two hops",
			expr: "Address.ZipCode",
			want: []string{"Address", "ZipCode"},
		},
		{
			name: "deep chain",
			expr: "Order.Customer.Address.City",
			want: []string{"Order", "Customer", "Address", "City"},
		},
		{
			name: "surrounding whitespace",
			expr: "  Address.City  ",
			want: []string{"Address", "City"},
		},
		{
			name: "whitespace around dots",
			expr: "Address . City",
			want: []string{"Address", "City"},
		},
		{
			name: "quoted segment",
			expr: `Meta."created-at"`,
			want: []string{"Meta", "created-at"},
		},
		{
			name: "quoted segment with escaped quote",
			expr: `"we\"ird".Name`,
			want: []string{`we"ird`, "Name"},
		},
		{
			name: "underscore identifier",
			expr: "_private.x_1",
			want: []string{"_private", "x_1"},
		},
		{
			name:    "empty expression",
			expr:    "",
			wantErr: true,
		},
		{
			name:    "blank expression",
			expr:    "   ",
			wantErr: true,
		},
		{
			name:    "leading dot",
			expr:    ".Address",
			wantErr: true,
		},
		{
			name:    "trailing dot",
			expr:    "Address.",
			wantErr: true,
		},
		{
			name:    "double dot",
			expr:    "Address..City",
			wantErr: true,
		},
		{
			name:    "digit-leading identifier",
			expr:    "1Address",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.expr)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got.Steps)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got.Steps) != len(tt.want) {
				t.Fatalf("steps: got %v, want %v", got.Steps, tt.want)
			}
			for i, step := range got.Steps {
				if step != tt.want[i] {
					t.Errorf("step %d: got %q, want %q", i, step, tt.want[i])
				}
			}
		})
	}
}

func TestPath_String(t *testing.T) {
	tests := []struct {
		name string
		path Path
		want string
	}{
		{
			name: "plain identifiers",
			path: Of("Address", "ZipCode"),
			want: "Address.ZipCode",
		},
		{
			name: "segment needing quotes",
			path: Of("Meta", "created-at"),
			want: `Meta."created-at"`,
		},
		{
			name: "empty path",
			path: Path{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.path.String(); got != tt.want {
				t.Errorf("String: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPath_RoundTrip(t *testing.T) {
	// String output of a parsed path must parse back to the same hops.
	exprs := []string{"Name", "Address.ZipCode", `Meta."created-at"`}
	for _, expr := range exprs {
		p, err := Parse(expr)
		if err != nil {
			t.Fatalf("parse %q: %v", expr, err)
		}
		p2, err := Parse(p.String())
		if err != nil {
			t.Fatalf("reparse %q: %v", p.String(), err)
		}
		if len(p.Steps) != len(p2.Steps) {
			t.Fatalf("round trip %q: got %v, want %v", expr, p2.Steps, p.Steps)
		}
		for i := range p.Steps {
			if p.Steps[i] != p2.Steps[i] {
				t.Errorf("round trip %q step %d: got %q, want %q", expr, i, p2.Steps[i], p.Steps[i])
			}
		}
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid expression")
		}
	}()
	MustParse("not..valid")
}

func TestIsEmpty(t *testing.T) {
	if !(Path{}).IsEmpty() {
		t.Error("zero path should be empty")
	}
	if Of("a").IsEmpty() {
		t.Error("one-hop path should not be empty")
	}
}
