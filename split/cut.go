package split

// Cutter splits text into sentence-like chunks. Implementations must return
// chunks whose in-order concatenation reconstructs the input exactly, since
// the segmenter's cells are a partition of the chunked input.
type Cutter interface {
	Cut(text string) []string
}

// PunctCutter cuts after sentence-ending punctuation, including the
// wide-character forms used in CJK text. Terminators stay attached to the
// chunk they end.
type PunctCutter struct{}

var sentenceEnders = map[rune]bool{
	'。': true,
	'！': true,
	'？': true,
	'…': true,
	'；': true,
	'.': true,
	'!': true,
	'?': true,
	';': true,
	'\n': true,
}

func (PunctCutter) Cut(text string) []string {
	var chunks []string
	current := make([]rune, 0, 64)
	for _, r := range text {
		current = append(current, r)
		if sentenceEnders[r] {
			chunks = append(chunks, string(current))
			current = current[:0]
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, string(current))
	}
	return chunks
}
