package watermark

import (
	"fmt"
	"runtime"
)

// EdgePolicy decides how planes whose size is not a multiple of the block size are partitioned.
type EdgePolicy int

const (
	// EdgePad replicates edge samples to fill the last row and column of blocks.
	// The padding is stripped again when the plane is reassembled.
	EdgePad EdgePolicy = iota
	// EdgeCrop only uses whole blocks; the remainder along the right and bottom edges is left untouched.
	EdgeCrop
)

func (p EdgePolicy) String() string {
	switch p {
	case EdgePad:
		return "pad"
	case EdgeCrop:
		return "crop"
	}
	return fmt.Sprintf("EdgePolicy(%d)", int(p))
}

// Agreement is the color mode merge policy.
type Agreement int

const (
	// Majority accepts a text decoded identically by more than half of the color channels.
	Majority Agreement = iota
	// Unanimous requires every color channel to decode the same text.
	Unanimous
)

func (a Agreement) String() string {
	switch a {
	case Majority:
		return "majority"
	case Unanimous:
		return "unanimous"
	}
	return fmt.Sprintf("Agreement(%d)", int(a))
}

// Coord addresses a coefficient inside a block. (0,0) is the DC term.
type Coord struct {
	Row int
	Col int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

const (
	DefaultBlockSize  = 8
	DefaultStep       = 16.0
	DefaultRedundancy = 3
)

// DefaultPosition is a low frequency, non-DC coefficient. It sits below the
// band JPEG quantizes hardest while moving single samples by at most a quarter of the step.
var DefaultPosition = Coord{Row: 2, Col: 1}

// Params configures embedding and extraction. Both sides must use the same values.
//
// Step trades robustness for visibility: a coefficient moves by at most Step, which moves
// a single sample by at most Step/4 for positions off the first row and column of an 8x8
// block. The default of 16 keeps a fully used image around 47 dB PSNR.
type Params struct {
	BlockSize  int
	Step       float64
	Redundancy int
	Positions  []Coord
	Edges      EdgePolicy
	Agreement  Agreement

	// ParityShards enables Reed-Solomon erasure coding of the data bytes when positive.
	ParityShards int
	// Key authenticates the frame checksum. It does not hide the payload.
	Key []byte

	// Workers bounds the number of blocks processed concurrently. Zero means GOMAXPROCS.
	Workers int
	// Progress is called with the number of blocks finished. It may be called concurrently.
	Progress func(n int)
}

// DefaultParams returns the parameters used when nil is passed to Embed or Extract.
func DefaultParams() *Params {
	return &Params{
		BlockSize:  DefaultBlockSize,
		Step:       DefaultStep,
		Redundancy: DefaultRedundancy,
		Positions:  []Coord{DefaultPosition},
		Edges:      EdgePad,
		Agreement:  Majority,
	}
}

// Validate checks the parameters without looking at any image.
func (p *Params) Validate() error {
	if p.BlockSize < 2 {
		return fmt.Errorf("%w: block size %d must be at least 2", ErrInvalidDimensions, p.BlockSize)
	}
	if !(p.Step > 0) {
		return fmt.Errorf("%w: quantization step must be positive, got %v", ErrInvalidParameter, p.Step)
	}
	if p.Redundancy < 1 {
		return fmt.Errorf("%w: redundancy must be at least 1, got %d", ErrInvalidParameter, p.Redundancy)
	}
	if len(p.Positions) == 0 {
		return fmt.Errorf("%w: at least one coefficient position is required", ErrInvalidParameter)
	}
	seen := make(map[Coord]bool, len(p.Positions))
	for _, pos := range p.Positions {
		if pos.Row < 0 || pos.Col < 0 || pos.Row >= p.BlockSize || pos.Col >= p.BlockSize {
			return fmt.Errorf("%w: position %v outside %dx%d block", ErrInvalidParameter, pos, p.BlockSize, p.BlockSize)
		}
		if pos.Row == 0 && pos.Col == 0 {
			return fmt.Errorf("%w: the DC coefficient cannot carry bits", ErrInvalidParameter)
		}
		if seen[pos] {
			return fmt.Errorf("%w: duplicate position %v", ErrInvalidParameter, pos)
		}
		seen[pos] = true
	}
	if p.Edges != EdgePad && p.Edges != EdgeCrop {
		return fmt.Errorf("%w: unknown edge policy %v", ErrInvalidParameter, p.Edges)
	}
	if p.Agreement != Majority && p.Agreement != Unanimous {
		return fmt.Errorf("%w: unknown agreement policy %v", ErrInvalidParameter, p.Agreement)
	}
	if p.ParityShards < 0 || p.ParityShards > maxParityShards {
		return fmt.Errorf("%w: parity shards must be between 0 and %d, got %d", ErrInvalidParameter, maxParityShards, p.ParityShards)
	}
	if len(p.Key) > maxKeyBytes {
		return fmt.Errorf("%w: key is %d bytes, at most %d are allowed", ErrInvalidParameter, len(p.Key), maxKeyBytes)
	}
	if p.Workers < 0 {
		return fmt.Errorf("%w: number of workers cannot be negative", ErrInvalidParameter)
	}
	return nil
}

func (p *Params) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (p *Params) framer() *Framer {
	return &Framer{Key: p.Key, ParityShards: p.ParityShards}
}

func (p *Params) progress(n int) {
	if p.Progress != nil {
		p.Progress(n)
	}
}

func resolveParams(p *Params) (*Params, error) {
	if p == nil {
		p = DefaultParams()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
