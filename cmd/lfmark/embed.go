package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andresmejia3/lfmark/pkg/imageio"
	"github.com/andresmejia3/lfmark/pkg/watermark"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	embedFlags struct {
		Image  string
		Msg    string
		File   string
		Out    string
		DryRun bool
		Codec  codecFlags
	}
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed a text watermark in an image",
	Run: func(cmd *cobra.Command, args []string) {
		if embedFlags.Msg != "" && embedFlags.File != "" {
			log.Fatal().Msg("message and file flags cannot both be provided")
		}
		if embedFlags.Msg == "" && embedFlags.File == "" {
			log.Fatal().Msg("either a message or a file is required")
		}

		text, err := readMessage(embedFlags.Msg, embedFlags.File)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read message")
		}
		params, err := embedFlags.Codec.params()
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid parameters")
		}

		img, format, err := imageio.Load(embedFlags.Image)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load image")
		}
		log.Debug().Str("format", format).Int("width", img.Width).Int("height", img.Height).
			Int("channels", img.Channels()).Msg("Image loaded")

		capacity, err := watermark.GetCapacity(img.Width, img.Height, params)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to compute capacity")
		}
		framer := &watermark.Framer{Key: params.Key, ParityShards: params.ParityShards}
		frameBits := framer.FrameLen(len(text))

		if embedFlags.DryRun {
			fmt.Printf("Frame size:  %d bits\n", frameBits)
			fmt.Printf("Capacity:    %d bits (%d blocks, redundancy %d)\n", capacity.Bits, capacity.Blocks, params.Redundancy)
			if frameBits > capacity.Bits {
				fmt.Println("Result:      does NOT fit")
				os.Exit(1)
			}
			fmt.Println("Result:      fits")
			return
		}

		bar := progressbar.NewOptions(
			frameBits*params.Redundancy*embedFlags.Codec.carrierPlanes(img),
			progressbar.OptionSetDescription("embedding"),
			progressbar.OptionSetWriter(os.Stderr),
		)
		params.Progress = func(n int) { bar.Add(n) }

		var marked *watermark.Image
		if embedFlags.Codec.Color {
			marked, err = watermark.EmbedColor(img, text, params)
		} else {
			marked, err = watermark.Embed(img, text, params)
		}
		bar.Finish()
		fmt.Fprintln(os.Stderr)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to embed watermark")
		}

		if embedFlags.Out == "" {
			outputDir := "output"
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				log.Fatal().Err(err).Msg("Failed to create default output directory")
			}
			embedFlags.Out = filepath.Join(outputDir, "marked.png")
		} else if err := os.MkdirAll(filepath.Dir(embedFlags.Out), 0755); err != nil {
			log.Fatal().Err(err).Msg("Failed to create output directory")
		}

		if err := imageio.Save(embedFlags.Out, marked); err != nil {
			log.Fatal().Err(err).Msg("Failed to save image")
		}
		log.Info().Str("output", embedFlags.Out).Int("bits", frameBits).Msg("Embedded watermark into the image")
	},
}

func readMessage(msg, file string) (string, error) {
	if file == "" {
		return msg, nil
	}
	if file == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(file)
	return string(b), err
}

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().StringVarP(&embedFlags.Image, "image-path", "i", "", "Path to image (required)")
	embedCmd.MarkFlagRequired("image-path")
	embedCmd.Flags().StringVarP(&embedFlags.Msg, "message", "m", "", "Text to embed")
	embedCmd.Flags().StringVarP(&embedFlags.File, "file", "f", "", "Path to a file holding the text. Use '-' for stdin.")
	embedCmd.Flags().StringVarP(&embedFlags.Out, "output", "o", "", "Output path for the image (.png, .jpg, .bmp, .tif)")
	embedCmd.Flags().BoolVar(&embedFlags.DryRun, "dry-run", false, "Check if the text fits without embedding")
	embedFlags.Codec.register(embedCmd)
}
