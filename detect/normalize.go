package detect

import (
	"strings"

	"github.com/longbridgeapp/opencc"
	"golang.org/x/text/unicode/norm"
)

// Texts longer than this get an accuracy advisory in the log. Truncation
// only happens when MaxInputLength is configured.
const longTextAdvisoryRunes = 100

// preprocess makes the text acceptable to the classifier: newlines become
// spaces (the classifier is line-oriented) and over-long input is truncated
// when a limit is configured. Truncation is logged, never an error.
func (d *Detector) preprocess(text string) string {
	if strings.ContainsRune(text, '\n') {
		logger.Warn("Replacing newline characters with spaces, the classifier rejects multi-line input")
		text = strings.ReplaceAll(text, "\n", " ")
	}
	runes := []rune(text)
	if d.config.MaxInputLength > 0 && len(runes) > d.config.MaxInputLength {
		logger.Warnf("Truncating input from %d to %d characters", len(runes), d.config.MaxInputLength)
		return string(runes[:d.config.MaxInputLength])
	}
	if len(runes) > longTextAdvisoryRunes {
		logger.Warn("Text may be too long, consider passing a single sentence for accurate prediction")
	}
	return text
}

// normalize applies the configured input normalizations before prediction.
func (d *Detector) normalize(text string) (string, error) {
	if d.config.NormalizeInput {
		text = normalizeCase(text)
	}
	if d.cjk != nil {
		converted, err := d.cjk.normalize(text)
		if err != nil {
			return "", err
		}
		text = converted
	}
	return text, nil
}

// normalizeCase lowercases text that is entirely uppercase, or whose Latin
// letters are more than 80% uppercase on input longer than 5 characters.
// All-caps Latin text is frequently misclassified as Japanese because the
// classifier's token statistics are case-sensitive.
func normalizeCase(text string) string {
	upper, letters := 0, 0
	for _, r := range text {
		switch {
		case r >= 'A' && r <= 'Z':
			upper++
			letters++
		case r >= 'a' && r <= 'z':
			letters++
		}
	}
	if letters == 0 {
		return text
	}
	allUpper := text == strings.ToUpper(text) && text != strings.ToLower(text)
	mostlyUpper := len([]rune(text)) > 5 && float64(upper) > 0.8*float64(letters)
	if allUpper || mostlyUpper {
		return strings.ToLower(text)
	}
	return text
}

// cjkNormalizer folds CJK width/compatibility forms and converts traditional
// to simplified characters, so that mixed-script input lands on the token
// statistics the classifier was trained on.
type cjkNormalizer struct {
	t2s *opencc.OpenCC
}

func newCJKNormalizer() (*cjkNormalizer, error) {
	t2s, err := opencc.New("t2s")
	if err != nil {
		return nil, err
	}
	return &cjkNormalizer{t2s: t2s}, nil
}

func (n *cjkNormalizer) normalize(text string) (string, error) {
	return n.t2s.Convert(norm.NFKC.String(text))
}
