package docmap

import (
	"testing"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		want    FieldTag
		wantErr bool
	}{
		{
			name: "simple name",
			tag:  "street",
			want: FieldTag{Name: "street"},
		},
		{
			name: "name with id",
			tag:  "_id,id",
			want: FieldTag{Name: "_id", ID: true},
		},
		{
			name: "id without name",
			tag:  "id",
			want: FieldTag{ID: true},
		},
		{
			name: "name with default",
			tag:  "retries,default=3",
			want: FieldTag{Name: "retries", Default: "3", HasDefault: true},
		},
		{
			name: "default containing equals",
			tag:  "expr,default=a=b",
			want: FieldTag{Name: "expr", Default: "a=b", HasDefault: true},
		},
		{
			name: "default only",
			tag:  "default=pending",
			want: FieldTag{Default: "pending", HasDefault: true},
		},
		{
			name: "skip",
			tag:  "-",
			want: FieldTag{Skip: true},
		},
		{
			name: "empty",
			tag:  "",
			want: FieldTag{},
		},
		{
			name: "spaces trimmed",
			tag:  " qty , id ",
			want: FieldTag{Name: "qty", ID: true},
		},
		{
			name: "underscore name",
			tag:  "created_at",
			want: FieldTag{Name: "created_at"},
		},
		{
			name:    "unknown option",
			tag:     "x,omitempty",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTag(tt.tag)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
