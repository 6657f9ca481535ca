package watermark

// toYCbCr converts RGB planes to full range YCbCr (JFIF), keeping full precision.
//
//	Y  =       0.299    R + 0.587    G + 0.114    B
//	Cb = 128 - 0.168736 R - 0.331264 G + 0.5      B
//	Cr = 128 + 0.5      R - 0.418688 G - 0.081312 B
func toYCbCr(r, g, b Plane) (y, cb, cr Plane) {
	y = NewPlane(r.Width, r.Height)
	cb = NewPlane(r.Width, r.Height)
	cr = NewPlane(r.Width, r.Height)
	for i := range r.Pix {
		rr, gg, bb := r.Pix[i], g.Pix[i], b.Pix[i]
		y.Pix[i] = 0.299*rr + 0.587*gg + 0.114*bb
		cb.Pix[i] = 128 - 0.168736*rr - 0.331264*gg + 0.5*bb
		cr.Pix[i] = 128 + 0.5*rr - 0.418688*gg - 0.081312*bb
	}
	return y, cb, cr
}

// fromYCbCr is the inverse of toYCbCr.
//
//	R = Y                        + 1.402    (Cr-128)
//	G = Y - 0.344136 (Cb-128)    - 0.714136 (Cr-128)
//	B = Y + 1.772    (Cb-128)
func fromYCbCr(y, cb, cr Plane) (r, g, b Plane) {
	r = NewPlane(y.Width, y.Height)
	g = NewPlane(y.Width, y.Height)
	b = NewPlane(y.Width, y.Height)
	for i := range y.Pix {
		yy, u, v := y.Pix[i], cb.Pix[i]-128, cr.Pix[i]-128
		r.Pix[i] = yy + 1.402*v
		g.Pix[i] = yy - 0.344136*u - 0.714136*v
		b.Pix[i] = yy + 1.772*u
	}
	return r, g, b
}

// luma returns the plane that carries the watermark in luma mode.
func luma(img *Image) Plane {
	if img.ColorPlanes() < 3 {
		return img.Planes[0]
	}
	y, _, _ := toYCbCr(img.Planes[0], img.Planes[1], img.Planes[2])
	return y
}
