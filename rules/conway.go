package rules

// Cell states.
const (
	Dead  uint8 = 0
	Alive uint8 = 1
)

/*
ApplyConwayRules applies Conway's Game of Life rules to determine the next state of a cell.

Conway's Game of Life rules: (alive && neighbors == 2) || neighbors == 3
*/
func ApplyConwayRules(neighbors int, alive bool) bool {
	return (alive && neighbors == 2) || neighbors == 3
}

// NextState is the B3/S23 predicate over 0/1 cell states. Any state other than
// Alive is treated as dead.
func NextState(state uint8, neighbors int) uint8 {
	if ApplyConwayRules(neighbors, state == Alive) {
		return Alive
	}
	return Dead
}
