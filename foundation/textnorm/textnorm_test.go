package textnorm

import "testing"

func TestTitleCase(t *testing.T) {
	cases := []struct{ in, want string }{
		{"bus station", "Bus Station"},
		{"YMCA", "YMCA"},
		{"the ymca centre", "The YMCA Centre"},
		{"town hall, PH", "Town Hall, PH"},
		{"", ""},
	}
	for _, c := range cases {
		if got := TitleCase(c.in); got != c.want {
			t.Errorf("TitleCase(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
