package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/lfmark/pkg/imageio"
	"github.com/andresmejia3/lfmark/pkg/watermark"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var capacityFlags codecFlags

var capacityCmd = &cobra.Command{
	Use:   "capacity [image-path]",
	Short: "Calculate the watermark capacity of an image",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		img, _, err := imageio.Load(args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load image")
		}
		params, err := capacityFlags.params()
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid parameters")
		}

		wtr := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(wtr, "Redundancy\tBlocks\tCapacity (Bits)\tMax Text (Bytes)")
		fmt.Fprintln(wtr, "----------\t------\t---------------\t----------------")

		seen := map[int]bool{}
		for _, r := range []int{1, 3, 5, params.Redundancy} {
			if seen[r] {
				continue
			}
			seen[r] = true
			p := *params
			p.Redundancy = r
			printCap(wtr, img, &p)
		}
		wtr.Flush()
	},
}

func printCap(wtr *tabwriter.Writer, img *watermark.Image, p *watermark.Params) {
	c, err := watermark.GetCapacity(img.Width, img.Height, p)
	if err != nil {
		fmt.Fprintf(wtr, "%d\t-\t-\t%v\n", p.Redundancy, err)
		return
	}
	maxText := fmt.Sprint(c.MaxTextBytes)
	if c.MaxTextBytes < 0 {
		maxText = "none"
	}
	fmt.Fprintf(wtr, "%d\t%d\t%d\t%s\n", p.Redundancy, c.Blocks, c.Bits, maxText)
}

func init() {
	rootCmd.AddCommand(capacityCmd)
	capacityFlags.register(capacityCmd)
}
