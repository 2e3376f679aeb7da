package notefmt

import (
	"strings"
	"testing"
)

func TestTargetName(t *testing.T) {
	tests := []struct {
		name   string
		source string
		ext    string
		want   string
	}{
		{"takeout timestamp", "note1-2024-01-01T12_00_00Z.txt", ".md", "note1.md"},
		{"no timestamp", "plan.txt", ".md", "plan.md"},
		{"timestamp mid name", "a-2023-12-31T23_59_59Z-b.txt", ".md", "a-b.md"},
		{"disallowed chars", `what? "this" <is> a:b|c*d.txt`, ".md", `what_ _this_ _is_ a_b_c_d.md`},
		{"backslash", `dir\name.txt`, ".md", "dir_name.md"},
		{"nested path uses base", "some/dir/plan.txt", ".md", "plan.md"},
		{"default ext", "plan.txt", "", "plan.md"},
		{"html source", "recipe-2022-05-01T08_30_00Z.html", ".md", "recipe.md"},
		{"spliced timestamp", "x-2024-01-01T12_00_00-2024-01-01T12_00_00ZZ.txt", ".md", "x.md"},
		{"colon forms timestamp", "y-2024-01-01T12:00:00Z.txt", ".md", "y.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TargetName(tt.source, tt.ext); got != tt.want {
				t.Errorf("TargetName(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func FuzzTargetName(f *testing.F) {
	for _, seed := range []string{"note-2024-01-01T12_00_00Z.txt", `a<b>c.txt`, "", "?.txt"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, source string) {
		got := TargetName(source, ".md")
		base := strings.TrimSuffix(got, ".md")
		if strings.ContainsAny(base, `\/*"<>:|?`) {
			t.Errorf("TargetName(%q) = %q contains a disallowed character", source, got)
		}
		if timestampPattern.MatchString(got) {
			t.Errorf("TargetName(%q) = %q still contains a timestamp", source, got)
		}
	})
}
