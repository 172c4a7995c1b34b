package nav

import "testing"

func TestParse_Unrecognized(t *testing.T) {
	inputs := []string{"", "   ", "something else", "Page of 300", "Page 42", "42 of 300", "Chapter 3 of 10"}
	for _, in := range inputs {
		if got := Parse(in); got != nil {
			t.Errorf("Parse(%q): expected nil, got %+v", in, got)
		}
	}
}

func TestParse_ArabicPage(t *testing.T) {
	got := Parse("Page 42 of 300")
	if got == nil {
		t.Fatal("expected a result")
	}
	if got.Page != 42 || got.Location != 0 || got.Total != 300 {
		t.Errorf("expected {Page:42 Total:300}, got %+v", got)
	}
}

func TestParse_Location(t *testing.T) {
	got := Parse("Location 150 of 5000")
	if got == nil {
		t.Fatal("expected a result")
	}
	if got.Location != 150 || got.Page != 0 || got.Total != 5000 {
		t.Errorf("expected {Location:150 Total:5000}, got %+v", got)
	}
}

func TestParse_RomanPage(t *testing.T) {
	tests := []struct {
		in       string
		location int
		total    int
	}{
		{"Page iv of 300", 4, 300},
		{"Page xii of 500", 12, 500},
		{"Page XII of 500", 12, 500},
		{"page IX of 40", 9, 40},
	}
	for _, tc := range tests {
		got := Parse(tc.in)
		if got == nil {
			t.Fatalf("Parse(%q): expected a result", tc.in)
		}
		if got.Page != 0 {
			t.Errorf("Parse(%q): roman page must report a location, got Page=%d", tc.in, got.Page)
		}
		if got.Location != tc.location || got.Total != tc.total {
			t.Errorf("Parse(%q): expected {Location:%d Total:%d}, got %+v", tc.in, tc.location, tc.total, got)
		}
	}
}

func TestParse_CaseInsensitive(t *testing.T) {
	got := Parse("PAGE 7 OF 99")
	if got == nil || got.Page != 7 || got.Total != 99 {
		t.Errorf("expected {Page:7 Total:99}, got %+v", got)
	}
}

func TestParse_SurroundingWhitespace(t *testing.T) {
	got := Parse("  Page 3 of 12  ")
	if got == nil || got.Page != 3 || got.Total != 12 {
		t.Errorf("expected {Page:3 Total:12}, got %+v", got)
	}
}
