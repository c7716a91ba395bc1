package overlay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlace(t *testing.T) {
	bg := "AAAAA\nAAAAA\nAAAAA\nAAAAA"

	tests := []struct {
		name string
		cfg  Config
		fg   string
		want []string
	}{
		{
			name: "center",
			cfg:  Config{Width: 5, Height: 4, Position: Center},
			fg:   "XX\nXX",
			want: []string{"AAAAA", "AXXAA", "AXXAA", "AAAAA"},
		},
		{
			name: "bottom with padding",
			cfg:  Config{Width: 5, Height: 4, Position: Bottom, PadY: 1},
			fg:   "XXX",
			want: []string{"AAAAA", "AAAAA", "AXXXA", "AAAAA"},
		},
		{
			name: "absolute",
			cfg:  Config{Width: 5, Height: 4, Position: Absolute, X: 3, Y: 0},
			fg:   "XX",
			want: []string{"AAAXX", "AAAAA", "AAAAA", "AAAAA"},
		},
		{
			name: "absolute clipped at right edge",
			cfg:  Config{Width: 5, Height: 4, Position: Absolute, X: 4, Y: 3},
			fg:   "XYZ",
			want: []string{"AAAAA", "AAAAA", "AAAAA", "AAAAX"},
		},
		{
			name: "negative origin clamps to zero",
			cfg:  Config{Width: 5, Height: 4, Position: Absolute, X: -2, Y: -1},
			fg:   "X",
			want: []string{"XAAAA", "AAAAA", "AAAAA", "AAAAA"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Split(Place(tt.cfg, tt.fg, bg), "\n")
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPlace_PadsShortBackground(t *testing.T) {
	out := Place(Config{Width: 3, Height: 3, Position: Absolute, X: 0, Y: 2}, "X", "AAA")
	require.Equal(t, []string{"AAA", "   ", "X  "}, strings.Split(out, "\n"))
}

func TestPlace_KeepsStyledBackground(t *testing.T) {
	bg := "\x1b[31mRRRRR\x1b[0m"
	out := Place(Config{Width: 5, Height: 1, Position: Absolute, X: 1}, "X", bg)
	require.Contains(t, out, "X")
	require.Contains(t, out, "\x1b[31m")
}
