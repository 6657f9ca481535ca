package watermark

// Embed hides text in the luminance of img and returns a new image.
//
// Gray images carry the frame in their only color plane. RGB images are converted to
// YCbCr, the frame goes into Y, and the result is converted back with chroma untouched.
// Alpha is copied. A nil params means DefaultParams. img is never modified, and
// capacity is checked before any coefficient is, so a failed call has no effect.
func Embed(img *Image, text string, params *Params) (*Image, error) {
	p, err := resolveParams(params)
	if err != nil {
		return nil, err
	}
	c, err := newCodec(img, p)
	if err != nil {
		return nil, err
	}
	bits, err := c.frame(text)
	if err != nil {
		return nil, err
	}

	out := img.Clone()
	if img.ColorPlanes() < 3 {
		marked, err := c.embedPlane(img.Planes[0], bits)
		if err != nil {
			return nil, err
		}
		out.Planes[0] = marked.quantized()
		return out, nil
	}

	y, cb, cr := toYCbCr(img.Planes[0], img.Planes[1], img.Planes[2])
	marked, err := c.embedPlane(y, bits)
	if err != nil {
		return nil, err
	}
	r, g, b := fromYCbCr(marked, cb, cr)
	out.Planes[0], out.Planes[1], out.Planes[2] = r.quantized(), g.quantized(), b.quantized()
	return out, nil
}

// EmbedColor hides one complete copy of text in every color plane of img independently.
// Extraction with ExtractColor then tolerates damage to a minority of the planes.
func EmbedColor(img *Image, text string, params *Params) (*Image, error) {
	p, err := resolveParams(params)
	if err != nil {
		return nil, err
	}
	c, err := newCodec(img, p)
	if err != nil {
		return nil, err
	}
	bits, err := c.frame(text)
	if err != nil {
		return nil, err
	}
	return c.embedChannels(img, bits)
}

// Extract recovers text embedded with Embed using the same params.
func Extract(img *Image, params *Params) (string, error) {
	p, err := resolveParams(params)
	if err != nil {
		return "", err
	}
	c, err := newCodec(img, p)
	if err != nil {
		return "", err
	}
	return c.extractPlane(luma(img))
}

// ExtractColor decodes every color plane and returns the text enough of them agree on
// (see Params.Agreement). Otherwise the error wraps ErrChannelDisagreement together
// with each failed channel's error.
func ExtractColor(img *Image, params *Params) (string, error) {
	p, err := resolveParams(params)
	if err != nil {
		return "", err
	}
	c, err := newCodec(img, p)
	if err != nil {
		return "", err
	}
	return mergeChannels(c.extractChannels(img), p.Agreement)
}
