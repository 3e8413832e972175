// Package split partitions mixed-language text into language-homogeneous
// cells by cutting it into sentence-like chunks, detecting each chunk's
// dominant language and merging adjacent chunks that share one.
package split

import (
	"github.com/samber/lo"

	"github.com/tsingjyujing/fastlang/detect"
)

// DefaultCellLimit is the hard upper bound on a single detection span.
// Longer chunks are sliced into fixed-size windows so one detection call
// never sees an arbitrarily long span.
const DefaultCellLimit = 150

// Cell is a contiguous span of text tagged with one dominant language.
// Lang is empty when detection produced no result. Length counts characters,
// not bytes.
type Cell struct {
	Text   string `json:"text"`
	Lang   string `json:"lang,omitempty"`
	Length int    `json:"length"`
}

// LanguageDetector is the detection collaborator: the dominant language of a
// chunk, or ok=false when the classifier produced no result for it.
type LanguageDetector interface {
	DetectLanguage(text string) (lang string, ok bool, err error)
}

// Options control a Segment call. The zero value of CellLimit means
// DefaultCellLimit.
type Options struct {
	CellLimit   int
	MergeSame   bool
	FilterEmpty bool
}

// DefaultOptions mirror the historical defaults: merge adjacent same-language
// chunks and drop chunks nothing was detected for (typically whitespace).
func DefaultOptions() Options {
	return Options{
		CellLimit:   DefaultCellLimit,
		MergeSame:   true,
		FilterEmpty: true,
	}
}

// Segmenter runs the cut/detect/merge pipeline. A nil cutter means the
// built-in punctuation cutter.
type Segmenter struct {
	detector LanguageDetector
	cutter   Cutter
}

func NewSegmenter(detector LanguageDetector, cutter Cutter) *Segmenter {
	if cutter == nil {
		cutter = PunctCutter{}
	}
	return &Segmenter{detector: detector, cutter: cutter}
}

// Segment partitions text into cells. Concatenating the returned cell texts
// in order reconstructs the chunked input exactly.
func (s *Segmenter) Segment(text string, opts Options) ([]Cell, error) {
	if opts.CellLimit <= 0 {
		opts.CellLimit = DefaultCellLimit
	}

	chunks := sliceLong(s.cutter.Cut(text), opts.CellLimit)
	cells := make([]Cell, 0, len(chunks))
	for _, chunk := range chunks {
		lang, ok, err := s.detector.DetectLanguage(chunk)
		if err != nil {
			return nil, err
		}
		if !ok {
			if opts.FilterEmpty {
				continue
			}
			lang = ""
		}
		cells = append(cells, Cell{
			Text:   chunk,
			Lang:   lang,
			Length: len([]rune(chunk)),
		})
	}

	if opts.MergeSame {
		cells = mergeCells(cells)
	}
	return cells, nil
}

// sliceLong hard-slices any chunk longer than limit characters into
// consecutive fixed-size windows; the last window may be shorter.
func sliceLong(chunks []string, limit int) []string {
	return lo.FlatMap(chunks, func(chunk string, _ int) []string {
		runes := []rune(chunk)
		if len(runes) <= limit {
			return []string{chunk}
		}
		windows := make([]string, 0, (len(runes)+limit-1)/limit)
		for i := 0; i < len(runes); i += limit {
			end := i + limit
			if end > len(runes) {
				end = len(runes)
			}
			windows = append(windows, string(runes[i:end]))
		}
		return windows
	})
}

// mergeCells coalesces consecutive cells carrying the identical language in
// a single left-to-right pass. Cells without a language never merge, not
// even with each other, and break any run in progress.
func mergeCells(cells []Cell) []Cell {
	merged := make([]Cell, 0, len(cells))
	for _, cell := range cells {
		if cell.Lang != "" && len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Lang == cell.Lang {
				last.Text += cell.Text
				last.Length += cell.Length
				continue
			}
		}
		merged = append(merged, cell)
	}
	return merged
}

// detectAdapter bridges a detect.Detector into the LanguageDetector
// collaborator, taking the top-1 result on a fixed tier.
type detectAdapter struct {
	detector *detect.Detector
	tier     detect.Tier
}

// NewDetectorAdapter wraps d for use by a Segmenter.
func NewDetectorAdapter(d *detect.Detector, tier detect.Tier) LanguageDetector {
	return detectAdapter{detector: d, tier: tier}
}

func (a detectAdapter) DetectLanguage(text string) (string, bool, error) {
	results, err := a.detector.Detect(text, a.tier, 1, 0)
	if err != nil {
		return "", false, err
	}
	if len(results) == 0 {
		return "", false, nil
	}
	return results[0].Lang, true, nil
}

// Segment is the package-level convenience over the shared default detector,
// using the lite tier as the historical implementation did.
func Segment(text string, opts Options) ([]Cell, error) {
	detector, err := detect.Default()
	if err != nil {
		return nil, err
	}
	return NewSegmenter(NewDetectorAdapter(detector, detect.TierLite), nil).Segment(text, opts)
}
