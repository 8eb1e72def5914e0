package model

import "sync"

// CellBufferPool recycles cell arrays between generations.
type CellBufferPool struct {
	pool sync.Pool
}

func NewCellBufferPool() *CellBufferPool {
	return &CellBufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				return new([][]uint8)
			},
		},
	}
}

// Get returns a rows x cols array. Contents are all dead.
func (p *CellBufferPool) Get(rows, cols int) [][]uint8 {
	if p == nil {
		return newCells(rows, cols)
	}

	buf := p.pool.Get().(*[][]uint8)
	cells := *buf

	// Reshape if needed
	if len(cells) != rows {
		cells = make([][]uint8, rows)
	}
	for i := range cells {
		if len(cells[i]) != cols {
			cells[i] = make([]uint8, cols)
		}
	}
	return cells
}

// Put clears the array and returns it to the pool.
func (p *CellBufferPool) Put(cells [][]uint8) {
	if p == nil || cells == nil {
		return
	}

	for _, row := range cells {
		clear(row)
	}
	p.pool.Put(&cells)
}

func newCells(rows, cols int) [][]uint8 {
	cells := make([][]uint8, rows)
	for i := range cells {
		cells[i] = make([]uint8, cols)
	}
	return cells
}
