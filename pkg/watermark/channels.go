package watermark

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// codec bundles everything one pipeline run over a single plane needs.
type codec struct {
	params *Params
	part   Partition
	mod    *Modulator
	framer *Framer
}

func newCodec(img *Image, p *Params) (*codec, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	part, err := NewPartition(img.Width, img.Height, p.BlockSize, p.Edges)
	if err != nil {
		return nil, err
	}
	return &codec{
		params: p,
		part:   part,
		mod:    newModulator(p),
		framer: p.framer(),
	}, nil
}

func (c *codec) capacity() int {
	return c.mod.Capacity(c.part)
}

// frame checks capacity before anything is framed or modulated.
func (c *codec) frame(text string) ([]bool, error) {
	capacity := c.capacity()
	need := c.framer.FrameLen(len(text))

	log.Debug().
		Int("blocks", c.part.Len()).
		Int("carriers", c.mod.Carriers(c.part)).
		Int("redundancy", c.params.Redundancy).
		Int("capacity", capacity).
		Int("required", need).
		Msg("Watermark capacity")

	if need > capacity {
		return nil, fmt.Errorf("%w: frame needs %d bits, %dx%d image holds %d at redundancy %d",
			ErrPayloadTooLarge, need, c.part.Width, c.part.Height, capacity, c.params.Redundancy)
	}
	return c.framer.Encode(text, capacity)
}

func (c *codec) embedPlane(plane Plane, bits []bool) (Plane, error) {
	return c.mod.Embed(c.part, plane, bits)
}

func (c *codec) extractPlane(plane Plane) (string, error) {
	bits, err := c.mod.Read(c.part, plane, c.capacity())
	if err != nil {
		return "", err
	}
	return c.framer.Decode(bits)
}

func (c *codec) readHeader(plane Plane) (uint32, error) {
	bits, err := c.mod.Read(c.part, plane, headerBits)
	if err != nil {
		return 0, fmt.Errorf("%w: image too small for a frame header", ErrCorruptFrame)
	}
	return c.framer.ReadHeader(bits)
}

// embedChannels writes the same frame into every color plane independently.
func (c *codec) embedChannels(img *Image, bits []bool) (*Image, error) {
	out := img.Clone()

	var g errgroup.Group
	for ch := range img.ColorPlanes() {
		g.Go(func() error {
			marked, err := c.embedPlane(img.Planes[ch], bits)
			if err != nil {
				return fmt.Errorf("channel %d: %w", ch, err)
			}
			out.Planes[ch] = marked.quantized()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type channelResult struct {
	text string
	err  error
}

func (c *codec) extractChannels(img *Image) []channelResult {
	results := make([]channelResult, img.ColorPlanes())

	var g errgroup.Group
	for ch := range results {
		g.Go(func() error {
			text, err := c.extractPlane(img.Planes[ch])
			results[ch] = channelResult{text: text, err: err}
			if err != nil {
				log.Debug().Int("channel", ch).Err(err).Msg("Channel failed to decode")
			} else {
				log.Debug().Int("channel", ch).Int("bytes", len(text)).Msg("Channel decoded")
			}
			return nil
		})
	}
	g.Wait()
	return results
}

// mergeChannels accepts the text that enough channels decoded identically.
func mergeChannels(results []channelResult, policy Agreement) (string, error) {
	need := len(results)/2 + 1
	if policy == Unanimous {
		need = len(results)
	}

	counts := make(map[string]int, len(results))
	best, bestCount := "", 0
	for _, r := range results {
		if r.err != nil {
			continue
		}
		counts[r.text]++
		if counts[r.text] > bestCount {
			best, bestCount = r.text, counts[r.text]
		}
	}
	if bestCount >= need {
		return best, nil
	}

	var errs []error
	for ch, r := range results {
		if r.err != nil {
			errs = append(errs, fmt.Errorf("channel %d: %w", ch, r.err))
		}
	}
	err := fmt.Errorf("%w: %d of %d channels agree, %s needs %d",
		ErrChannelDisagreement, bestCount, len(results), policy, need)
	if len(errs) > 0 {
		return "", errors.Join(err, errors.Join(errs...))
	}
	return "", err
}
