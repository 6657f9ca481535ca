package watermark

import (
	"errors"
	"math"
	"testing"
)

func TestEmbedExtractRoundTrip(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		channels      int
		text          string
		params        func(p *Params)
	}{
		{"Gray", 256, 256, 1, "lfmark ✓", nil},
		{"Gray Alpha", 256, 256, 2, "lfmark ✓", nil},
		{"RGB", 256, 256, 3, "lfmark ✓", nil},
		{"RGBA", 256, 256, 4, "lfmark ✓", nil},
		{"Padded Edges", 252, 190, 3, "edge ok", nil},
		{"Cropped Edges", 252, 190, 1, "crop ok", func(p *Params) { p.Edges = EdgeCrop }},
		{"Block Size 16", 256, 256, 1, "ok", func(p *Params) { p.BlockSize = 16 }},
		{"Redundancy 1", 128, 128, 3, "redundancy one", func(p *Params) { p.Redundancy = 1 }},
		{"Empty Text", 128, 128, 1, "", nil},
		{"Several Positions", 128, 128, 3, "ok", func(p *Params) {
			p.Positions = []Coord{{2, 1}, {1, 2}, {2, 2}}
		}},
		{"Parity And Key", 320, 256, 1, "hi", func(p *Params) {
			p.ParityShards = 2
			p.Key = []byte("k")
		}},
		{"Single Worker", 256, 256, 3, "one at a time", func(p *Params) { p.Workers = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultParams()
			if tt.params != nil {
				tt.params(params)
			}
			img := texturedImage(tt.width, tt.height, tt.channels)

			marked, err := Embed(img, tt.text, params)
			if err != nil {
				t.Fatalf("Embed failed: %v", err)
			}
			if marked.Width != img.Width || marked.Height != img.Height || marked.Channels() != img.Channels() {
				t.Fatalf("marked image is %dx%dx%d, want %dx%dx%d",
					marked.Width, marked.Height, marked.Channels(), img.Width, img.Height, img.Channels())
			}

			got, err := Extract(marked, params)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if got != tt.text {
				t.Errorf("Extract = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestEmbedColorRoundTrip(t *testing.T) {
	for _, channels := range []int{1, 2, 3, 4} {
		img := texturedImage(256, 256, channels)
		marked, err := EmbedColor(img, "every channel", nil)
		if err != nil {
			t.Fatalf("%d channels: EmbedColor failed: %v", channels, err)
		}
		got, err := ExtractColor(marked, nil)
		if err != nil {
			t.Fatalf("%d channels: ExtractColor failed: %v", channels, err)
		}
		if got != "every channel" {
			t.Errorf("%d channels: ExtractColor = %q", channels, got)
		}

		unanimous := DefaultParams()
		unanimous.Agreement = Unanimous
		if got, err := ExtractColor(marked, unanimous); err != nil || got != "every channel" {
			t.Errorf("%d channels: unanimous ExtractColor = %q, %v", channels, got, err)
		}
	}
}

func TestPayloadTooLarge(t *testing.T) {
	// 64 blocks at redundancy 3 carry 21 bits, "Hi" needs 80
	img := texturedImage(64, 64, 1)
	orig := img.Clone()

	if _, err := Embed(img, "Hi", nil); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("Embed: expected ErrPayloadTooLarge, got %v", err)
	}
	if _, err := EmbedColor(img, "Hi", nil); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("EmbedColor: expected ErrPayloadTooLarge, got %v", err)
	}
	if !imagesEqual(t, img, orig) {
		t.Error("failed embed modified the input image")
	}
}

func TestCapacityBoundary(t *testing.T) {
	// 240 blocks at redundancy 3 carry exactly the 80 bits of a two byte frame
	img := texturedImage(128, 120, 1)

	marked, err := Embed(img, "ok", nil)
	if err != nil {
		t.Fatalf("frame that exactly fits was rejected: %v", err)
	}
	if got, err := Extract(marked, nil); err != nil || got != "ok" {
		t.Errorf("Extract = %q, %v", got, err)
	}
	if _, err := Embed(img, "ok!", nil); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("expected ErrPayloadTooLarge one byte over, got %v", err)
	}
}

func TestEmbedDeterministic(t *testing.T) {
	img := texturedImage(256, 256, 3)
	serial := DefaultParams()
	serial.Workers = 1

	a, err := Embed(img, "same", nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Embed(img, "same", serial)
	if err != nil {
		t.Fatal(err)
	}
	if !imagesEqual(t, a, b) {
		t.Error("two embeds of the same input differ")
	}
}

func TestEmbedDoesNotModifyInput(t *testing.T) {
	img := texturedImage(256, 256, 4)
	orig := img.Clone()

	if _, err := Embed(img, "input", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := EmbedColor(img, "input", nil); err != nil {
		t.Fatal(err)
	}
	if !imagesEqual(t, img, orig) {
		t.Error("input image was modified")
	}
}

func TestLumaEmbedKeepsChromaAndAlpha(t *testing.T) {
	img := texturedImage(256, 256, 4)
	marked, err := Embed(img, "chroma", nil)
	if err != nil {
		t.Fatal(err)
	}

	y0, cb0, cr0 := toYCbCr(img.Planes[0], img.Planes[1], img.Planes[2])
	y1, cb1, cr1 := toYCbCr(marked.Planes[0], marked.Planes[1], marked.Planes[2])

	// rounding each RGB sample moves Cb and Cr by at most half a level
	const tolerance = 0.5 + 1e-9
	lumaChanged := false
	for i := range y0.Pix {
		if d := math.Abs(cb1.Pix[i] - cb0.Pix[i]); d > tolerance {
			t.Fatalf("Cb of sample %d moved by %v", i, d)
		}
		if d := math.Abs(cr1.Pix[i] - cr0.Pix[i]); d > tolerance {
			t.Fatalf("Cr of sample %d moved by %v", i, d)
		}
		if y1.Pix[i] != y0.Pix[i] {
			lumaChanged = true
		}
	}
	if !lumaChanged {
		t.Error("luma did not change")
	}
	if !planesEqual(marked.Planes[3], img.Planes[3]) {
		t.Error("alpha changed")
	}
	for i, v := range marked.Planes[0].Pix {
		if v != math.Round(v) || v < 0 || v > 255 {
			t.Fatalf("sample %d = %v is not an 8-bit value", i, v)
		}
	}
}

func TestSingleBlockDamageIsOutvoted(t *testing.T) {
	img := texturedImage(128, 128, 1)
	params := DefaultParams()
	marked, err := Embed(img, "ok", params)
	if err != nil {
		t.Fatal(err)
	}

	frameBlocks := params.framer().FrameLen(2) * params.Redundancy
	for i := 0; i < frameBlocks; i++ {
		damaged := &Image{Width: marked.Width, Height: marked.Height, Planes: []Plane{
			flipBlock(t, marked.Planes[0], params, i),
		}}
		got, err := Extract(damaged, params)
		if err != nil || got != "ok" {
			t.Fatalf("block %d flipped: Extract = %q, %v", i, got, err)
		}
	}
}

func TestSingleBlockDamageIsDetected(t *testing.T) {
	img := texturedImage(128, 128, 1)
	params := DefaultParams()
	params.Redundancy = 1
	marked, err := Embed(img, "flip me", params)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < params.framer().FrameLen(7); i++ {
		damaged := &Image{Width: marked.Width, Height: marked.Height, Planes: []Plane{
			flipBlock(t, marked.Planes[0], params, i),
		}}
		got, err := Extract(damaged, params)
		if err == nil {
			t.Fatalf("block %d flipped: Extract returned %q without error", i, got)
		}
		if !errors.Is(err, ErrChecksumMismatch) && !errors.Is(err, ErrCorruptFrame) {
			t.Fatalf("block %d flipped: unexpected error %v", i, err)
		}
	}
}

func TestExtractColorAgreement(t *testing.T) {
	img := texturedImage(256, 256, 3)
	a, err := EmbedColor(img, "aaa", nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := EmbedColor(img, "bbb", nil)
	if err != nil {
		t.Fatal(err)
	}

	flat := NewPlane(img.Width, img.Height)
	for i := range flat.Pix {
		flat.Pix[i] = 128
	}
	unanimous := DefaultParams()
	unanimous.Agreement = Unanimous

	t.Run("One Channel Destroyed", func(t *testing.T) {
		damaged := a.Clone()
		damaged.Planes[2] = flat
		if got, err := ExtractColor(damaged, nil); err != nil || got != "aaa" {
			t.Errorf("majority ExtractColor = %q, %v", got, err)
		}
		_, err := ExtractColor(damaged, unanimous)
		if !errors.Is(err, ErrChannelDisagreement) {
			t.Errorf("expected ErrChannelDisagreement, got %v", err)
		}
		if !errors.Is(err, ErrChecksumMismatch) {
			t.Errorf("channel error not joined: %v", err)
		}
	})

	t.Run("Two Channels Destroyed", func(t *testing.T) {
		damaged := a.Clone()
		damaged.Planes[0] = flat
		damaged.Planes[1] = flat
		if _, err := ExtractColor(damaged, nil); !errors.Is(err, ErrChannelDisagreement) {
			t.Errorf("expected ErrChannelDisagreement, got %v", err)
		}
	})

	t.Run("Channels Disagree", func(t *testing.T) {
		mixed := a.Clone()
		mixed.Planes[2] = b.Planes[2]
		if got, err := ExtractColor(mixed, nil); err != nil || got != "aaa" {
			t.Errorf("majority ExtractColor = %q, %v", got, err)
		}
		if _, err := ExtractColor(mixed, unanimous); !errors.Is(err, ErrChannelDisagreement) {
			t.Errorf("expected ErrChannelDisagreement, got %v", err)
		}
	})
}

func TestMergeChannels(t *testing.T) {
	fail := channelResult{err: ErrCorruptFrame}
	tests := []struct {
		name    string
		results []channelResult
		policy  Agreement
		want    string
		wantErr bool
	}{
		{"All Agree", []channelResult{{text: "x"}, {text: "x"}, {text: "x"}}, Majority, "x", false},
		{"Two Of Three", []channelResult{{text: "x"}, fail, {text: "x"}}, Majority, "x", false},
		{"Split Vote", []channelResult{{text: "x"}, {text: "y"}, fail}, Majority, "", true},
		{"Single Channel", []channelResult{{text: "x"}}, Majority, "x", false},
		{"Single Failed Channel", []channelResult{fail}, Majority, "", true},
		{"Two Of Three Unanimous", []channelResult{{text: "x"}, fail, {text: "x"}}, Unanimous, "", true},
		{"Empty Text Agrees", []channelResult{{text: ""}, {text: ""}, fail}, Majority, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mergeChannels(tt.results, tt.policy)
			if tt.wantErr {
				if !errors.Is(err, ErrChannelDisagreement) {
					t.Fatalf("expected ErrChannelDisagreement, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("merged %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractUnmarkedImage(t *testing.T) {
	img := texturedImage(256, 256, 3)
	if got, err := Extract(img, nil); err == nil {
		t.Errorf("unmarked image yielded %q", got)
	}
}

func TestExtractWithWrongKey(t *testing.T) {
	img := texturedImage(256, 256, 1)
	keyed := DefaultParams()
	keyed.Key = []byte("right")

	marked, err := Embed(img, "keyed", keyed)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Extract(marked, nil); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("expected ErrChecksumMismatch without key, got %v", err)
	}
	if got, err := Extract(marked, keyed); err != nil || got != "keyed" {
		t.Errorf("Extract with key = %q, %v", got, err)
	}
}

func TestEmbedRejectsInvalidInput(t *testing.T) {
	good := texturedImage(64, 64, 1)
	short := texturedImage(64, 64, 3)
	short.Planes[1].Pix = short.Planes[1].Pix[:10]
	tiny := texturedImage(5, 5, 1)
	cropped := DefaultParams()
	cropped.Edges = EdgeCrop

	tests := []struct {
		name    string
		img     *Image
		text    string
		params  *Params
		wantErr error
	}{
		{"Nil Image", nil, "", nil, ErrInvalidDimensions},
		{"Empty Image", &Image{}, "", nil, ErrInvalidDimensions},
		{"Short Plane", short, "", nil, ErrInvalidDimensions},
		{"Too Many Planes", &Image{Width: 64, Height: 64, Planes: append(texturedImage(64, 64, 4).Planes, good.Planes[0])}, "", nil, ErrInvalidDimensions},
		{"Smaller Than Block", tiny, "", cropped, ErrInvalidDimensions},
		{"Bad Step", good, "", &Params{BlockSize: 8, Redundancy: 1, Positions: []Coord{{2, 1}}}, ErrInvalidParameter},
		{"Invalid UTF-8", texturedImage(256, 256, 1), "\xc3\x28", nil, ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Embed(tt.img, tt.text, tt.params); !errors.Is(err, tt.wantErr) {
				t.Errorf("Embed: expected %v, got %v", tt.wantErr, err)
			}
			if _, err := EmbedColor(tt.img, tt.text, tt.params); !errors.Is(err, tt.wantErr) {
				t.Errorf("EmbedColor: expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(p *Params)
		wantErr error
	}{
		{"Defaults", func(p *Params) {}, nil},
		{"Block Size One", func(p *Params) { p.BlockSize = 1 }, ErrInvalidDimensions},
		{"Zero Step", func(p *Params) { p.Step = 0 }, ErrInvalidParameter},
		{"NaN Step", func(p *Params) { p.Step = math.NaN() }, ErrInvalidParameter},
		{"Zero Redundancy", func(p *Params) { p.Redundancy = 0 }, ErrInvalidParameter},
		{"No Positions", func(p *Params) { p.Positions = nil }, ErrInvalidParameter},
		{"DC Position", func(p *Params) { p.Positions = []Coord{{0, 0}} }, ErrInvalidParameter},
		{"Position Outside Block", func(p *Params) { p.Positions = []Coord{{8, 1}} }, ErrInvalidParameter},
		{"Duplicate Position", func(p *Params) { p.Positions = []Coord{{2, 1}, {2, 1}} }, ErrInvalidParameter},
		{"Unknown Edge Policy", func(p *Params) { p.Edges = EdgePolicy(5) }, ErrInvalidParameter},
		{"Unknown Agreement", func(p *Params) { p.Agreement = Agreement(5) }, ErrInvalidParameter},
		{"Too Many Parity Shards", func(p *Params) { p.ParityShards = maxParityShards + 1 }, ErrInvalidParameter},
		{"Negative Parity Shards", func(p *Params) { p.ParityShards = -1 }, ErrInvalidParameter},
		{"Long Key", func(p *Params) { p.Key = make([]byte, maxKeyBytes+1) }, ErrInvalidParameter},
		{"Negative Workers", func(p *Params) { p.Workers = -1 }, ErrInvalidParameter},
		{"Large Block", func(p *Params) { p.BlockSize = 32; p.Positions = []Coord{{31, 31}} }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(p)
			err := p.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFullCapacityWithThinEdges(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"One Sample Bottom Row", 104, 145},
		{"One Sample Right Column", 145, 104},
		{"One Sample Both Edges", 145, 145},
		{"Two Sample Edges", 106, 146},
		{"Three Sample Edges", 147, 147},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := fillText(t, tt.width, tt.height, nil)
			img := noisyImage(tt.width, tt.height, 1)

			marked, err := Embed(img, text, nil)
			if err != nil {
				t.Fatalf("Embed failed: %v", err)
			}
			got, err := Extract(marked, nil)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if got != text {
				t.Errorf("Extract = %q, want %q", got, text)
			}
		})
	}
}

func TestFullCapacityAcrossEdgeSizes(t *testing.T) {
	for extent := 137; extent <= 176; extent++ {
		for _, size := range [][2]int{{104, extent}, {extent, 104}} {
			width, height := size[0], size[1]
			text := fillText(t, width, height, nil)
			for seed := int64(1); seed <= 2; seed++ {
				marked, err := Embed(noisyImage(width, height, seed), text, nil)
				if err != nil {
					t.Fatalf("%dx%d seed %d: Embed failed: %v", width, height, seed, err)
				}
				got, err := Extract(marked, nil)
				if err != nil || got != text {
					t.Errorf("%dx%d seed %d: Extract = %q, %v", width, height, seed, got, err)
				}
			}
		}
	}
}
