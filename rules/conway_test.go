package rules

import "testing"

func TestNextState(t *testing.T) {
	tests := []struct {
		name      string
		state     uint8
		neighbors int
		want      uint8
	}{
		{"alive underpopulated 0", Alive, 0, Dead},
		{"alive underpopulated 1", Alive, 1, Dead},
		{"alive survives 2", Alive, 2, Alive},
		{"alive survives 3", Alive, 3, Alive},
		{"alive overcrowded 4", Alive, 4, Dead},
		{"alive overcrowded 8", Alive, 8, Dead},
		{"dead stays dead 2", Dead, 2, Dead},
		{"dead born 3", Dead, 3, Alive},
		{"dead stays dead 4", Dead, 4, Dead},
		{"unknown state treated as dead", 7, 2, Dead},
		{"unknown state can be born", 7, 3, Alive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextState(tt.state, tt.neighbors); got != tt.want {
				t.Errorf("NextState(%d, %d) = %d, want %d", tt.state, tt.neighbors, got, tt.want)
			}
		})
	}
}

func TestApplyConwayRulesMatchesNextState(t *testing.T) {
	for n := 0; n <= 8; n++ {
		for _, alive := range []bool{false, true} {
			state := Dead
			if alive {
				state = Alive
			}
			if ApplyConwayRules(n, alive) != (NextState(state, n) == Alive) {
				t.Fatalf("predicates disagree for alive=%v neighbors=%d", alive, n)
			}
		}
	}
}
