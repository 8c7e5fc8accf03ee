package app

import (
	"math/rand"

	"metislap/internal/domain"
)

const (
	// LadderRows is the fixed number of rows in every ladder graph.
	LadderRows = 10
	// LadderDensity is the independent inclusion probability of each
	// candidate rung.
	LadderDensity = 0.4
)

// GenerateRungs builds the horizontal connector set for a ladder with
// lines columns. A rung is never placed directly next to one at the
// previous column of the same row, so no column chains through two
// rungs in a single row.
func GenerateRungs(lines int, rnd *rand.Rand) []domain.Rung {
	rungs := make([]domain.Rung, 0, LadderRows*lines/2)
	for row := 0; row < LadderRows; row++ {
		last := -2
		for col := 0; col < lines-1; col++ {
			if rnd.Float64() >= LadderDensity {
				continue
			}
			if col-1 == last {
				continue
			}
			rungs = append(rungs, domain.Rung{Row: row, Col: col})
			last = col
		}
	}
	return rungs
}

// ResolveLadder walks the graph top to bottom from the starting column.
// At each row a rung to the right is followed before a rung from the
// left; the check order is part of the contract.
func ResolveLadder(start int, rungs []domain.Rung) int {
	col := start
	for row := 0; row < LadderRows; row++ {
		if hasRung(rungs, row, col) {
			col++
			continue
		}
		if hasRung(rungs, row, col-1) {
			col--
		}
	}
	return col
}

func hasRung(rungs []domain.Rung, row, col int) bool {
	if col < 0 {
		return false
	}
	for _, r := range rungs {
		if r.Row == row && r.Col == col {
			return true
		}
	}
	return false
}
