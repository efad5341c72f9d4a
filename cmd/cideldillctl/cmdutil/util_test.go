package cmdutil

import "testing"

func TestParseCommaSeparatedList(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a, b , c", []string{"a", "b", "c"}},
		{" , ,", nil},
	}
	for _, c := range cases {
		got := ParseCommaSeparatedList(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("ParseCommaSeparatedList(%q) = %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("ParseCommaSeparatedList(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}

func TestEmptyOr(t *testing.T) {
	if got := EmptyOr("", "-"); got != "-" {
		t.Errorf("EmptyOr(\"\", \"-\") = %q, want \"-\"", got)
	}
	if got := EmptyOr("value", "-"); got != "value" {
		t.Errorf("EmptyOr(\"value\", \"-\") = %q, want \"value\"", got)
	}
}

func TestGetClientDefaultURL(t *testing.T) {
	Flags.ServerURL = ""
	client := GetClient()
	if client == nil {
		t.Fatal("GetClient() returned nil")
	}
}
