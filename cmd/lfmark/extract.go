package main

import (
	"fmt"
	"os"

	"github.com/andresmejia3/lfmark/pkg/imageio"
	"github.com/andresmejia3/lfmark/pkg/watermark"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
)

var (
	extractFlags struct {
		Image string
		Out   string
		QR    string
		Codec codecFlags
	}
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a text watermark from an image",
	Run: func(cmd *cobra.Command, args []string) {
		text, err := extractText(extractFlags.Image, &extractFlags.Codec)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to extract watermark")
		}

		if extractFlags.QR != "" {
			if err := qrcode.WriteFile(text, qrcode.Medium, 256, extractFlags.QR); err != nil {
				log.Fatal().Err(err).Msg("Failed to render QR code")
			}
			log.Info().Str("output", extractFlags.QR).Msg("Rendered watermark as QR code")
		}

		if extractFlags.Out != "" {
			if err := os.WriteFile(extractFlags.Out, []byte(text), 0644); err != nil {
				log.Fatal().Err(err).Msg("Failed to write output file")
			}
			return
		}
		fmt.Println(text)
	},
}

func extractText(path string, flags *codecFlags) (string, error) {
	params, err := flags.params()
	if err != nil {
		return "", err
	}
	img, _, err := imageio.Load(path)
	if err != nil {
		return "", err
	}
	if flags.Color {
		return watermark.ExtractColor(img, params)
	}
	return watermark.Extract(img, params)
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractFlags.Image, "image-path", "i", "", "Path to image (required)")
	extractCmd.MarkFlagRequired("image-path")
	extractCmd.Flags().StringVarP(&extractFlags.Out, "output", "o", "", "Output path for the extracted text (optional)")
	extractCmd.Flags().StringVar(&extractFlags.QR, "qr", "", "Also render the extracted text as a QR code PNG at this path")
	extractFlags.Codec.register(extractCmd)
}
