// Package watermark hides a short text in the low-frequency DCT coefficients of an image
// and recovers it from a possibly re-encoded copy.
//
// The package works on in-memory planes only. Decoding and encoding image files is left
// to the caller (see package imageio).
//
// Embedding:
//
//	marked, err := watermark.Embed(img, "owner: alice", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Extraction with the same parameters:
//
//	text, err := watermark.Extract(marked, nil)
//	if errors.Is(err, watermark.ErrChecksumMismatch) {
//	    // the image was altered too much, or carries no watermark
//	}
//
// EmbedColor and ExtractColor store one copy per color channel and vote across them.
//
// The payload is not encrypted. Params.Key only authenticates the checksum.
package watermark
