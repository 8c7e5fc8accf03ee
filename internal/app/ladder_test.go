package app

import (
	"math/rand"
	"testing"

	"metislap/internal/domain"
)

func TestGenerateRungsNeverAdjacent(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for trial := 0; trial < 100; trial++ {
		lines := 2 + rnd.Intn(9)
		rungs := GenerateRungs(lines, rnd)
		byRow := make(map[int][]int)
		for _, rung := range rungs {
			if rung.Row < 0 || rung.Row >= LadderRows {
				t.Fatalf("rung row %d out of range", rung.Row)
			}
			if rung.Col < 0 || rung.Col > lines-2 {
				t.Fatalf("rung col %d out of range for %d lines", rung.Col, lines)
			}
			byRow[rung.Row] = append(byRow[rung.Row], rung.Col)
		}
		for row, cols := range byRow {
			seen := make(map[int]bool, len(cols))
			for _, col := range cols {
				if seen[col-1] || seen[col+1] {
					t.Fatalf("adjacent rungs in row %d: %v", row, cols)
				}
				if seen[col] {
					t.Fatalf("duplicate rung in row %d: %v", row, cols)
				}
				seen[col] = true
			}
		}
	}
}

func TestResolveLadderKnownGraph(t *testing.T) {
	rungs := []domain.Rung{
		{Row: 0, Col: 0},
		{Row: 1, Col: 1},
	}
	cases := []struct{ start, want int }{
		{0, 2},
		{1, 0},
		{2, 1},
	}
	for _, tc := range cases {
		if got := ResolveLadder(tc.start, rungs); got != tc.want {
			t.Fatalf("start %d resolved to %d, want %d", tc.start, got, tc.want)
		}
	}
}

func TestResolveLadderIsPermutation(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		lines := 2 + rnd.Intn(9)
		rungs := GenerateRungs(lines, rnd)
		seen := make(map[int]bool, lines)
		for start := 0; start < lines; start++ {
			end := ResolveLadder(start, rungs)
			if end < 0 || end >= lines {
				t.Fatalf("start %d landed outside the ladder: %d", start, end)
			}
			if seen[end] {
				t.Fatalf("two starts resolved to column %d (lines=%d rungs=%v)", end, lines, rungs)
			}
			seen[end] = true
		}
	}
}

func TestResolveLadderIsDeterministic(t *testing.T) {
	rungs := GenerateRungs(5, rand.New(rand.NewSource(99)))
	for start := 0; start < 5; start++ {
		first := ResolveLadder(start, rungs)
		for i := 0; i < 10; i++ {
			if got := ResolveLadder(start, rungs); got != first {
				t.Fatalf("resolution not deterministic for start %d", start)
			}
		}
	}
}
