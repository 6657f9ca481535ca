package watermark

// Info contains what can be read from the frame headers of an image without decoding the payload.
type Info struct {
	Capacity int // frame bits per plane
	Channels []ChannelInfo
}

// ChannelInfo is the header of one carrying plane.
type ChannelInfo struct {
	Channel int
	// DataBits is the declared number of data bits. With erasure coding these are shard bytes, not text.
	DataBits uint32
	// Plausible reports whether the header describes a frame that fits the plane.
	// A plane without a watermark still yields some header, usually an implausible one.
	Plausible bool
}

// Inspect reads only the length headers. In color mode every color plane is inspected,
// otherwise the luminance plane alone, reported as channel 0.
func Inspect(img *Image, params *Params, color bool) (*Info, error) {
	p, err := resolveParams(params)
	if err != nil {
		return nil, err
	}
	c, err := newCodec(img, p)
	if err != nil {
		return nil, err
	}

	planes := []Plane{luma(img)}
	if color {
		planes = img.Planes[:img.ColorPlanes()]
	}

	info := &Info{Capacity: c.capacity()}
	for ch, plane := range planes {
		n, err := c.readHeader(plane)
		if err != nil {
			return nil, err
		}
		info.Channels = append(info.Channels, ChannelInfo{
			Channel:   ch,
			DataBits:  n,
			Plausible: n%8 == 0 && uint64(n)+FrameOverhead <= uint64(info.Capacity),
		})
	}
	return info, nil
}
