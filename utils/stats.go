package utils

import "time"

// Stats for population and performance monitoring
type Stats struct {
	GenerationsPerSecond float64
	AveragePopulation    float64
	TotalGenerations     int
	Population           int
	Density              float64
	PeakPopulation       int
	StartTime            time.Time

	lastUpdate     time.Time
	lastGeneration int
}

func NewStats(now time.Time) *Stats {
	return &Stats{StartTime: now, lastUpdate: now}
}

// Update records the state at generation. cells is the grid size, used for density.
func (s *Stats) Update(generation, population, cells int, now time.Time) {
	if elapsed := now.Sub(s.lastUpdate); elapsed > 0 && generation > s.lastGeneration {
		s.GenerationsPerSecond = float64(generation-s.lastGeneration) / elapsed.Seconds()
	}
	s.lastUpdate = now
	s.lastGeneration = generation

	s.TotalGenerations = generation
	s.Population = population
	s.PeakPopulation = max(s.PeakPopulation, population)
	if cells > 0 {
		s.Density = float64(population) / float64(cells) * 100
	}

	// Simple moving average for population
	if s.AveragePopulation == 0 {
		s.AveragePopulation = float64(population)
	} else {
		s.AveragePopulation = (s.AveragePopulation * 0.9) + (float64(population) * 0.1)
	}
}

// Reset clears the counters after a grid reset or resize.
func (s *Stats) Reset(now time.Time) {
	*s = Stats{StartTime: now, lastUpdate: now}
}
