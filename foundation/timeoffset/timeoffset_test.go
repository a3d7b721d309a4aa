package timeoffset

import "testing"

func TestFromHMS(t *testing.T) {
	got := FromHMS(25, 30, 0)
	if got != TimeOffset(25*3600+30*60) {
		t.Fatalf("got %v", got)
	}
	if got.Hours() != 25 || got.Minutes() != 30 || got.Seconds() != 0 {
		t.Fatalf("unexpected decomposition: %d %d %d", got.Hours(), got.Minutes(), got.Seconds())
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		in   TimeOffset
		want string
	}{
		{FromHMS(8, 0, 0), "08:00:00"},
		{FromHMS(25, 5, 9), "25:05:09"},
		{Zero, "00:00:00"},
	}
	for _, c := range cases {
		if got := c.in.String(); got != c.want {
			t.Errorf("String(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestOrdering(t *testing.T) {
	a := FromHMS(8, 0, 0)
	b := FromHMS(8, 30, 0)
	if !a.Before(b) || !b.After(a) {
		t.Fatalf("expected a before b")
	}
}
