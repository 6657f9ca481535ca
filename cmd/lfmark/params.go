package main

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"

	"github.com/andresmejia3/lfmark/pkg/watermark"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/pbkdf2"
)

var keySalt = []byte("lfmark checksum key")

// deriveKey stretches a passphrase into a 32-byte checksum key.
func deriveKey(passphrase string) []byte {
	return pbkdf2.Key([]byte(passphrase), keySalt, 100000, 32, sha256.New)
}

// codecFlags are shared by every command that embeds or reads a watermark.
// Embedding and extraction must be run with the same values.
type codecFlags struct {
	Color        bool
	BlockSize    int
	Step         float64
	Redundancy   int
	Positions    []string
	CropEdges    bool
	Unanimous    bool
	ParityShards int
	Key          string
	Workers      int
}

func (f *codecFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.Color, "color", false, "Embed/read one copy per color channel instead of the luminance")
	cmd.Flags().IntVarP(&f.BlockSize, "block-size", "b", watermark.DefaultBlockSize, "Edge length of the DCT blocks")
	cmd.Flags().Float64VarP(&f.Step, "step", "q", watermark.DefaultStep, "Quantization step (larger is more robust and more visible)")
	cmd.Flags().IntVarP(&f.Redundancy, "redundancy", "r", watermark.DefaultRedundancy, "Number of blocks voting on each bit")
	cmd.Flags().StringArrayVar(&f.Positions, "position", nil, "Coefficient carrying the bit as row,col (repeatable, default 2,1)")
	cmd.Flags().BoolVar(&f.CropEdges, "crop-edges", false, "Leave partial edge blocks untouched instead of padding them")
	cmd.Flags().BoolVar(&f.Unanimous, "unanimous", false, "In color mode require every channel to agree")
	cmd.Flags().IntVar(&f.ParityShards, "parity-shards", 0, "Reed-Solomon parity shards protecting the payload (0 disables)")
	cmd.Flags().StringVarP(&f.Key, "key", "k", "", "Passphrase authenticating the checksum (does not encrypt)")
	cmd.Flags().IntVarP(&f.Workers, "workers", "w", 0, "Number of workers to use for concurrency (default: number of CPUs)")
}

func (f *codecFlags) params() (*watermark.Params, error) {
	p := watermark.DefaultParams()
	p.BlockSize = f.BlockSize
	p.Step = f.Step
	p.Redundancy = f.Redundancy
	p.ParityShards = f.ParityShards
	p.Workers = f.Workers
	if f.Key != "" {
		p.Key = deriveKey(f.Key)
	}
	if f.CropEdges {
		p.Edges = watermark.EdgeCrop
	}
	if f.Unanimous {
		p.Agreement = watermark.Unanimous
	}
	if len(f.Positions) > 0 {
		p.Positions = p.Positions[:0]
		for _, s := range f.Positions {
			pos, err := parsePosition(s)
			if err != nil {
				return nil, err
			}
			p.Positions = append(p.Positions, pos)
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func parsePosition(s string) (watermark.Coord, error) {
	row, col, ok := strings.Cut(s, ",")
	if !ok {
		return watermark.Coord{}, fmt.Errorf("position %q must be row,col", s)
	}
	r, err := strconv.Atoi(strings.TrimSpace(row))
	if err != nil {
		return watermark.Coord{}, fmt.Errorf("position %q: %v", s, err)
	}
	c, err := strconv.Atoi(strings.TrimSpace(col))
	if err != nil {
		return watermark.Coord{}, fmt.Errorf("position %q: %v", s, err)
	}
	return watermark.Coord{Row: r, Col: c}, nil
}

// carrierPlanes is the number of planes a frame is written to.
func (f *codecFlags) carrierPlanes(img *watermark.Image) int {
	if f.Color {
		return img.ColorPlanes()
	}
	return 1
}
