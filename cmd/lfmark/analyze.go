package main

import (
	"fmt"

	"github.com/andresmejia3/lfmark/pkg/imageio"
	"github.com/andresmejia3/lfmark/pkg/watermark"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	analyzeFlags struct {
		Original string
		Marked   string
		Heatmap  string
	}
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the difference between an original and a watermarked image",
	Long:  `Calculates PSNR (Peak Signal-to-Noise Ratio) and generates a heatmap image highlighting modified pixels.`,
	Run: func(cmd *cobra.Command, args []string) {
		original, _, err := imageio.Load(analyzeFlags.Original)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load original")
		}
		marked, _, err := imageio.Load(analyzeFlags.Marked)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load watermarked image")
		}

		result, err := watermark.Analyze(original, marked)
		if err != nil {
			log.Fatal().Err(err).Msg("Analysis failed")
		}
		if err := imageio.Save(analyzeFlags.Heatmap, result.Heatmap); err != nil {
			log.Fatal().Err(err).Msg("Failed to save heatmap")
		}

		fmt.Printf("Analysis Complete:\n")
		fmt.Printf("------------------\n")
		fmt.Printf("MSE (Mean Squared Error):       %.4f\n", result.MSE)
		fmt.Printf("PSNR (Peak Signal-to-Noise):    %.2f dB\n", result.PSNR)
		fmt.Printf("Modified pixels:                %d\n", result.Changed)
		fmt.Printf("Heatmap saved to:               %s\n", analyzeFlags.Heatmap)
		fmt.Printf("\nInterpretation:\n")
		fmt.Printf(" > 30dB: Good quality (hard to detect visually)\n")
		fmt.Printf(" > 40dB: Excellent quality\n")
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFlags.Original, "original", "o", "", "Path to original image (required)")
	analyzeCmd.MarkFlagRequired("original")
	analyzeCmd.Flags().StringVarP(&analyzeFlags.Marked, "marked", "s", "", "Path to watermarked image (required)")
	analyzeCmd.MarkFlagRequired("marked")
	analyzeCmd.Flags().StringVarP(&analyzeFlags.Heatmap, "heatmap", "d", "heatmap.png", "Output path for the difference heatmap image")
}
