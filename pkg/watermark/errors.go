package watermark

import "errors"

var (
	// ErrInvalidDimensions is returned when a plane cannot be partitioned with the configured block size
	ErrInvalidDimensions = errors.New("watermark: invalid dimensions")

	// ErrInvalidParameter is returned when embedding parameters are out of range
	ErrInvalidParameter = errors.New("watermark: invalid parameter")

	// ErrPayloadTooLarge is returned when the framed text does not fit the image
	ErrPayloadTooLarge = errors.New("watermark: payload too large")

	// ErrInsufficientCapacity is returned when a plane has too few blocks for the bits handed to the modulator
	ErrInsufficientCapacity = errors.New("watermark: insufficient capacity")

	// ErrCorruptFrame is returned when the length header disagrees with the bits available
	ErrCorruptFrame = errors.New("watermark: corrupt frame")

	// ErrChecksumMismatch is returned when the frame is well formed but its checksum fails
	ErrChecksumMismatch = errors.New("watermark: checksum mismatch")

	// ErrInvalidEncoding is returned when the recovered data is not valid UTF-8
	ErrInvalidEncoding = errors.New("watermark: invalid encoding")

	// ErrChannelDisagreement is returned when too few color channels decode to the same text
	ErrChannelDisagreement = errors.New("watermark: channel disagreement")
)
