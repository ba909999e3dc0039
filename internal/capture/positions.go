package capture

import "github.com/nicolapapp/bioformats/internal/record"

// CountPositions implements "Position count": #positions is the largest
// n such that the first n stage entries have pairwise distinct (x,y)
// prefixes against entry 0 — equivalently, scan forward from index 1 and
// stop as soon as an entry's (x,y) matches position 0's. Z is
// deliberately ignored: positions are defined by XY alone, so two
// entries differing only in Z collapse to the same position.
func CountPositions(positions []record.StagePosition) int {
	if len(positions) <= 1 {
		return 1
	}

	first := positions[0]
	for i := 1; i < len(positions); i++ {
		if positions[i].X == first.X && positions[i].Y == first.Y {
			return i
		}
	}
	return len(positions)
}
