package watermark

import (
	"fmt"
	"iter"
)

// Block is one square tile of a plane.
type Block struct {
	Row   int // block row
	Col   int // block column
	Index int // position in raster order

	Size int
	// Width and Height cover the part of the block that lies inside the plane.
	// They are smaller than Size only for padded edge blocks.
	Width  int
	Height int

	Pix []float64 // Size*Size samples, row-major
}

// Padded reports whether part of the block lies outside the plane.
func (b *Block) Padded() bool {
	return b.Width < b.Size || b.Height < b.Size
}

// repad overwrites the padding with the nearest sample inside the plane,
// the same values the partitioner would produce for the current contents.
func (b *Block) repad() {
	n := b.Size
	for y := 0; y < b.Height; y++ {
		last := b.Pix[y*n+b.Width-1]
		for x := b.Width; x < n; x++ {
			b.Pix[y*n+x] = last
		}
	}
	lastRow := b.Pix[(b.Height-1)*n : b.Height*n]
	for y := b.Height; y < n; y++ {
		copy(b.Pix[y*n:(y+1)*n], lastRow)
	}
}

// Partition is the block grid laid over a plane of a given size.
type Partition struct {
	Width  int
	Height int
	Size   int
	Cols   int
	Rows   int
	Edges  EdgePolicy
}

// NewPartition computes the block grid for a width x height plane.
func NewPartition(width, height, size int, edges EdgePolicy) (Partition, error) {
	if size < 2 {
		return Partition{}, fmt.Errorf("%w: block size %d must be at least 2", ErrInvalidDimensions, size)
	}
	if width <= 0 || height <= 0 {
		return Partition{}, fmt.Errorf("%w: plane is %dx%d", ErrInvalidDimensions, width, height)
	}

	p := Partition{Width: width, Height: height, Size: size, Edges: edges}
	switch edges {
	case EdgePad:
		p.Cols = (width + size - 1) / size
		p.Rows = (height + size - 1) / size
	case EdgeCrop:
		if size > width || size > height {
			return Partition{}, fmt.Errorf("%w: block size %d exceeds %dx%d plane and padding is disabled",
				ErrInvalidDimensions, size, width, height)
		}
		p.Cols = width / size
		p.Rows = height / size
	default:
		return Partition{}, fmt.Errorf("%w: unknown edge policy %v", ErrInvalidParameter, edges)
	}
	return p, nil
}

// Len returns the number of blocks.
func (p Partition) Len() int {
	return p.Cols * p.Rows
}

// Extent returns how much of the block at raster index lies inside the plane.
func (p Partition) Extent(index int) (width, height int) {
	row, col := index/p.Cols, index%p.Cols
	return min(p.Size, p.Width-col*p.Size), min(p.Size, p.Height-row*p.Size)
}

// Block copies the block at raster index out of plane, padding it if it crosses the edge.
func (p Partition) Block(plane Plane, index int) Block {
	row, col := index/p.Cols, index%p.Cols
	x0, y0 := col*p.Size, row*p.Size
	width, height := p.Extent(index)
	b := Block{
		Row:    row,
		Col:    col,
		Index:  index,
		Size:   p.Size,
		Width:  width,
		Height: height,
		Pix:    make([]float64, p.Size*p.Size),
	}
	for y := 0; y < b.Height; y++ {
		src := plane.Pix[(y0+y)*plane.Width+x0:]
		copy(b.Pix[y*p.Size:y*p.Size+b.Width], src[:b.Width])
	}
	if b.Padded() {
		b.repad()
	}
	return b
}

// Blocks yields every block of plane lazily, top row left to right, then the next row.
func (p Partition) Blocks(plane Plane) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		for i := range p.Len() {
			if !yield(p.Block(plane, i)) {
				return
			}
		}
	}
}

// Reassemble writes blocks back at their coordinates into a copy of base and drops any padding.
// Samples no block covers keep the value they have in base.
func (p Partition) Reassemble(base Plane, blocks iter.Seq[Block]) Plane {
	out := base.Clone()
	for b := range blocks {
		x0, y0 := b.Col*p.Size, b.Row*p.Size
		for y := 0; y < b.Height; y++ {
			dst := out.Pix[(y0+y)*out.Width+x0:]
			copy(dst[:b.Width], b.Pix[y*p.Size:y*p.Size+b.Width])
		}
	}
	return out
}
