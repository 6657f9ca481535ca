package watermark

// Capacity describes how much a single plane of a given size can carry.
type Capacity struct {
	Blocks       int // blocks per plane that carry bits
	Bits         int // frame bits per plane: Blocks / Redundancy
	Overhead     int // frame bits spent on an empty text
	MaxTextBytes int // longest text that fits, -1 if none does
}

// GetCapacity computes the capacity of a width x height image under params.
// In color mode every color plane carries the same frame, so the capacity is the same.
func GetCapacity(width, height int, params *Params) (*Capacity, error) {
	p, err := resolveParams(params)
	if err != nil {
		return nil, err
	}
	part, err := NewPartition(width, height, p.BlockSize, p.Edges)
	if err != nil {
		return nil, err
	}

	framer := p.framer()
	mod := newModulator(p)
	bits := mod.Capacity(part)
	return &Capacity{
		Blocks:       mod.Carriers(part),
		Bits:         bits,
		Overhead:     framer.FrameLen(0),
		MaxTextBytes: framer.MaxTextBytes(bits),
	}, nil
}
