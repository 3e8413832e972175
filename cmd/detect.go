package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsingjyujing/fastlang/detect"
	"github.com/tsingjyujing/fastlang/split"
)

// NewDetectCommand creates the one-shot detection verb.
func NewDetectCommand() *cobra.Command {
	var (
		modelFlag string
		k         int
		threshold float64
		strict    bool
	)
	detectCommand := &cobra.Command{
		Use:   "detect [text]...",
		Short: "Detect the language of the given text",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			tier, err := detect.ParseTier(modelFlag)
			if err != nil {
				logger.WithError(err).Fatal("Invalid model tier")
			}
			config := detect.DefaultConfig()
			config.AllowFallback = !strict
			results, err := detect.Detect(strings.Join(args, " "), tier, k, threshold, config)
			if err != nil {
				logger.WithError(err).Fatal("Detection failed")
			}
			printJSON(results)
		},
	}
	detectCommand.Flags().StringVarP(&modelFlag, "model", "m", "auto", "Model tier: lite, full or auto")
	detectCommand.Flags().IntVarP(&k, "top", "k", 1, "Number of candidate languages to return")
	detectCommand.Flags().Float64VarP(&threshold, "threshold", "t", 0.0, "Minimum confidence threshold")
	detectCommand.Flags().BoolVar(&strict, "strict", false, "Disable fallback to the lite model")
	return detectCommand
}

// NewSegmentCommand creates the segmentation verb.
func NewSegmentCommand() *cobra.Command {
	var (
		cellLimit int
		noMerge   bool
		keepEmpty bool
	)
	segmentCommand := &cobra.Command{
		Use:   "segment [text]...",
		Short: "Split text into language-homogeneous cells",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cells, err := split.Segment(strings.Join(args, " "), split.Options{
				CellLimit:   cellLimit,
				MergeSame:   !noMerge,
				FilterEmpty: !keepEmpty,
			})
			if err != nil {
				logger.WithError(err).Fatal("Segmentation failed")
			}
			printJSON(cells)
		},
	}
	segmentCommand.Flags().IntVar(&cellLimit, "cell-limit", split.DefaultCellLimit, "Maximum characters per detection span")
	segmentCommand.Flags().BoolVar(&noMerge, "no-merge", false, "Do not merge adjacent same-language cells")
	segmentCommand.Flags().BoolVar(&keepEmpty, "keep-empty", false, "Keep cells with no detected language")
	return segmentCommand
}

func printJSON(data any) {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		logger.WithError(err).Fatal("Failed to encode result")
	}
	fmt.Println(string(encoded))
}
