package main

import (
	"fmt"

	"github.com/andresmejia3/lfmark/pkg/imageio"
	"github.com/andresmejia3/lfmark/pkg/watermark"
	"github.com/spf13/cobra"
)

var infoFlags codecFlags

var infoCmd = &cobra.Command{
	Use:   "info [image_path]",
	Short: "Inspect the watermark frame header of an image",
	Long:  `Reads only the length header of the watermark frame and reports whether it is plausible, without validating the payload.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		imagePath := args[0]

		params, err := infoFlags.params()
		if err != nil {
			return err
		}
		img, format, err := imageio.Load(imagePath)
		if err != nil {
			return err
		}
		info, err := watermark.Inspect(img, params, infoFlags.Color)
		if err != nil {
			return fmt.Errorf("failed to get info from %s: %w", imagePath, err)
		}

		fmt.Println("Watermark Header Information:")
		fmt.Println("-----------------------------")
		fmt.Printf("Format:           %s (%dx%d, %d channels)\n", format, img.Width, img.Height, img.Channels())
		fmt.Printf("Capacity:         %d bits per plane\n", info.Capacity)
		for _, ch := range info.Channels {
			fmt.Printf("Channel %d:        %d data bits, plausible: %t\n", ch.Channel, ch.DataBits, ch.Plausible)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoFlags.register(infoCmd)
}
