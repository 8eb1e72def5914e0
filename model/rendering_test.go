package model

import (
	"bytes"
	"testing"
)

func TestTerminalRendererDisplay(t *testing.T) {
	g := NewGrid(3, 3)
	g.SetCell(0, 0, 1)
	g.SetCell(2, 1, 1)

	var buf bytes.Buffer
	r := NewTerminalRenderer(&buf)
	if err := r.Display(g); err != nil {
		t.Fatal(err)
	}

	want := "██    \n    ██\n      \n"
	if buf.String() != want {
		t.Fatalf("Display() wrote %q, want %q", buf.String(), want)
	}
}

func TestCellBufferPoolReshapes(t *testing.T) {
	p := NewCellBufferPool()
	a := p.Get(3, 4)
	a[1][2] = 1
	p.Put(a)

	b := p.Get(5, 2)
	if len(b) != 5 || len(b[0]) != 2 {
		t.Fatalf("Get(5,2) shape = %dx%d", len(b), len(b[0]))
	}
	for y := range b {
		for x := range b[y] {
			if b[y][x] != 0 {
				t.Fatalf("pooled buffer not cleared at (%d,%d)", x, y)
			}
		}
	}

	var nilPool *CellBufferPool
	if c := nilPool.Get(2, 2); len(c) != 2 {
		t.Fatal("nil pool should allocate")
	}
}
