package ring

import "testing"

func TestStartingIndex(t *testing.T) {
	cases := []struct {
		key  string
		n    int
		want int
	}{
		{"abcD", 4, 0x44 % 4},
		{"abcD", 4, 0},
		{"foo", 3, int('o') % 3},
		{"", 4, 0},
	}
	for _, c := range cases {
		got := StartingIndex([]byte(c.key), c.n)
		if got != c.want {
			t.Errorf("StartingIndex(%q, %d) = %d, want %d", c.key, c.n, got, c.want)
		}
	}
}

func TestStartingIndexZeroBackends(t *testing.T) {
	if got := StartingIndex([]byte("x"), 0); got != 0 {
		t.Errorf("expected 0 for n=0, got %d", got)
	}
}
