package watermark

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Padded edge blocks lose part of every coefficient change when they are cropped on
// reassembly and re-padded on extraction. Each refinement pass scales the lost part by
// one minus the block's edge gain, so a block with a gain of at least minEdgeGain comes
// within step/settleDivisor of its target in well under maxRepadPasses. A block that
// does not settle fails the embed with ErrInsufficientCapacity instead of carrying a
// bit that cannot be read back.
const (
	minEdgeGain    = 0.25
	maxRepadPasses = 16
	settleDivisor  = 8
)

// Modulator writes bits into designated DCT coefficients with quantization index
// modulation and reads them back by majority vote.
//
// Only carrier blocks hold bits: every whole block, and every padded edge block whose
// extent keeps at least minEdgeGain of each designated coefficient (a strip one sample
// tall, for instance, has no vertical frequencies at all). Bit i owns carriers
// [i*Redundancy, (i+1)*Redundancy) in partition order. Inside each block every
// designated coefficient c is moved to the nearest multiple q*Step whose index q has
// the parity of the bit, so c changes by at most Step.
//
// Reading takes round(c/Step) mod 2 from every designated coefficient of every owned
// block and votes. When the vote is tied, which needs an even number of votes, the bit
// reads as 0. This biases ties toward 0; keep Redundancy*len(Positions) odd to avoid it.
type Modulator struct {
	transform  *Transform
	step       float64
	redundancy int
	positions  []int // row-major indices into the coefficient matrix
	workers    int
	progress   func(int)
}

func newModulator(p *Params) *Modulator {
	positions := make([]int, len(p.Positions))
	for i, pos := range p.Positions {
		positions[i] = pos.Row*p.BlockSize + pos.Col
	}
	return &Modulator{
		transform:  NewTransform(p.BlockSize),
		step:       p.Step,
		redundancy: p.Redundancy,
		positions:  positions,
		workers:    p.workers(),
		progress:   p.progress,
	}
}

// Capacity returns how many bits a partition can carry.
func (m *Modulator) Capacity(part Partition) int {
	_, carriers := m.carriers(part)
	return carriers / m.redundancy
}

// Carriers returns the number of blocks of part that hold bits.
func (m *Modulator) Carriers(part Partition) int {
	_, carriers := m.carriers(part)
	return carriers
}

// carriers maps every block index to its carrier slot, or -1 for blocks that hold no bits.
func (m *Modulator) carriers(part Partition) ([]int, int) {
	slots := make([]int, part.Len())
	usable := make(map[[2]int]bool)
	n := 0
	for i := range slots {
		width, height := part.Extent(i)
		if width < part.Size || height < part.Size {
			shape := [2]int{width, height}
			ok, seen := usable[shape]
			if !seen {
				ok = m.edgeGain(width, height) >= minEdgeGain
				usable[shape] = ok
			}
			if !ok {
				slots[i] = -1
				continue
			}
		}
		slots[i] = n
		n++
	}
	return slots, n
}

// edgeGain returns the smallest fraction of a unit change to a designated coefficient
// that survives cropping a block to width x height and padding it again.
func (m *Modulator) edgeGain(width, height int) float64 {
	n := m.transform.Size()
	gain := math.Inf(1)
	for _, pos := range m.positions {
		coef := make([]float64, n*n)
		coef[pos] = 1
		b := Block{Size: n, Width: width, Height: height, Pix: m.transform.Inverse(coef)}
		b.repad()
		gain = math.Min(gain, m.transform.Forward(b.Pix)[pos])
	}
	return gain
}

// Embed returns a copy of plane with bits written into it. Blocks past the last
// assigned one, and blocks that carry nothing, are copied unchanged.
func (m *Modulator) Embed(part Partition, plane Plane, bits []bool) (Plane, error) {
	slots, carriers := m.carriers(part)
	need := len(bits) * m.redundancy
	if need > carriers {
		return Plane{}, fmt.Errorf("%w: %d bits at redundancy %d need %d blocks, plane has %d",
			ErrInsufficientCapacity, len(bits), m.redundancy, need, carriers)
	}

	blocks := make([]Block, need)
	var g errgroup.Group
	g.SetLimit(m.workers)
	for b := range part.Blocks(plane) {
		slot := slots[b.Index]
		if slot < 0 {
			continue
		}
		if slot >= need {
			break
		}
		g.Go(func() error {
			if err := m.embedBlock(&b, bits[slot/m.redundancy]); err != nil {
				return err
			}
			blocks[slot] = b
			m.progress(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Plane{}, err
	}

	return part.Reassemble(plane, slices.Values(blocks)), nil
}

// Read recovers the first n bits carried by plane.
func (m *Modulator) Read(part Partition, plane Plane, n int) ([]bool, error) {
	slots, carriers := m.carriers(part)
	need := n * m.redundancy
	if need > carriers {
		return nil, fmt.Errorf("%w: %d bits at redundancy %d need %d blocks, plane has %d",
			ErrInsufficientCapacity, n, m.redundancy, need, carriers)
	}

	ones := make([]int, need)
	var g errgroup.Group
	g.SetLimit(m.workers)
	for b := range part.Blocks(plane) {
		slot := slots[b.Index]
		if slot < 0 {
			continue
		}
		if slot >= need {
			break
		}
		g.Go(func() error {
			coef := m.transform.Forward(b.Pix)
			for _, pos := range m.positions {
				if m.readCoefficient(coef[pos]) {
					ones[slot]++
				}
			}
			m.progress(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	votes := m.redundancy * len(m.positions)
	bits := make([]bool, n)
	for i := range bits {
		count := 0
		for _, o := range ones[i*m.redundancy : (i+1)*m.redundancy] {
			count += o
		}
		// strictly more than half; a tie reads as 0
		bits[i] = 2*count > votes
	}
	return bits, nil
}

func (m *Modulator) embedBlock(b *Block, bit bool) error {
	coef := m.transform.Forward(b.Pix)
	targets := make([]float64, len(m.positions))
	for i, pos := range m.positions {
		targets[i] = m.quantize(coef[pos], bit)
		coef[pos] = targets[i]
	}
	b.Pix = m.transform.Inverse(coef)
	if !b.Padded() {
		return nil
	}

	// The padding is dropped on reassembly and rebuilt from the edge samples on
	// extraction, so push the targets into what survives that round trip.
	for range maxRepadPasses {
		b.repad()
		coef = m.transform.Forward(b.Pix)
		settled := true
		for i, pos := range m.positions {
			if math.Abs(coef[pos]-targets[i]) > m.step/settleDivisor {
				settled = false
			}
			coef[pos] = targets[i]
		}
		if settled {
			return nil
		}
		b.Pix = m.transform.Inverse(coef)
	}
	return fmt.Errorf("%w: padded block (%d,%d) of %dx%d samples did not settle after %d passes",
		ErrInsufficientCapacity, b.Row, b.Col, b.Width, b.Height, maxRepadPasses)
}

// quantize returns the multiple of step nearest to c whose index has the parity of bit.
func (m *Modulator) quantize(c float64, bit bool) float64 {
	q := math.Round(c / m.step)
	if oddIndex(q) != bit {
		if c < q*m.step {
			q--
		} else {
			q++
		}
	}
	return q * m.step
}

func (m *Modulator) readCoefficient(c float64) bool {
	return oddIndex(math.Round(c / m.step))
}

func oddIndex(q float64) bool {
	return int64(q)&1 == 1
}
