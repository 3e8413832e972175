package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Prediction is one (language, confidence) pair returned by a classifier.
type Prediction struct {
	Lang  string  `json:"lang"`
	Score float64 `json:"score"`
}

// Handle is an opaque loaded classifier instance. Predict does not mutate the
// handle, so a cached handle may serve concurrent callers.
type Handle interface {
	// Predict returns up to k predictions with confidence >= threshold,
	// ordered by descending confidence. Empty input yields no predictions
	// and no error. Multi-line input is rejected.
	Predict(text string, k int, threshold float64) ([]Prediction, error)
}

// Profile is the model artifact format: a manifest describing the language
// inventory and the engine configuration it is compiled with. The lite tier
// ships an embedded profile; the full tier profile lives in the cache
// directory and may be downloaded.
type Profile struct {
	Name        string   `json:"name"`
	Version     int      `json:"version"`
	Engine      string   `json:"engine"`
	Accuracy    string   `json:"accuracy"`
	Preload     bool     `json:"preload"`
	LabelPrefix string   `json:"label_prefix,omitempty"`
	MinMemoryMB int64    `json:"min_memory_mb,omitempty"`
	Languages   []string `json:"languages"`
}

const (
	accuracyLow  = "low"
	accuracyHigh = "high"
)

// ParseProfile decodes and validates a profile artifact.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if p.Engine != "" && p.Engine != "lingua" {
		return nil, fmt.Errorf("%w: unsupported engine %q", ErrInvalidProfile, p.Engine)
	}
	switch p.Accuracy {
	case "", accuracyLow, accuracyHigh:
	default:
		return nil, fmt.Errorf("%w: unsupported accuracy %q", ErrInvalidProfile, p.Accuracy)
	}
	if len(p.Languages) == 0 {
		return nil, fmt.Errorf("%w: no languages declared", ErrInvalidProfile)
	}
	return &p, nil
}

// linguaHandle adapts a lingua detector built from a profile to the Handle
// contract.
type linguaHandle struct {
	detector lingua.LanguageDetector
	prefix   string
}

// isoToLanguage maps lowercase ISO 639-1 codes to lingua languages.
var isoToLanguage = func() map[string]lingua.Language {
	m := make(map[string]lingua.Language)
	for _, lang := range lingua.AllLanguages() {
		m[strings.ToLower(lang.IsoCode639_1().String())] = lang
	}
	return m
}()

// newLinguaHandle compiles a profile into a detector. Unknown language codes
// are skipped with a warning so a newer profile still loads on an older
// engine; a profile with no resolvable language is invalid.
func newLinguaHandle(p *Profile) (Handle, error) {
	languages := make([]lingua.Language, 0, len(p.Languages))
	for _, code := range p.Languages {
		lang, ok := isoToLanguage[strings.ToLower(code)]
		if !ok {
			logger.Warnf("Profile %s declares unknown language code %q, skipping", p.Name, code)
			continue
		}
		languages = append(languages, lang)
	}
	if len(languages) == 0 {
		return nil, fmt.Errorf("%w: no resolvable languages", ErrInvalidProfile)
	}

	builder := lingua.NewLanguageDetectorBuilder().FromLanguages(languages...)
	if p.Accuracy == accuracyLow {
		builder = builder.WithLowAccuracyMode()
	}
	if p.Preload {
		builder = builder.WithPreloadedLanguageModels()
	}
	return &linguaHandle{
		detector: builder.Build(),
		prefix:   p.LabelPrefix,
	}, nil
}

func (h *linguaHandle) Predict(text string, k int, threshold float64) ([]Prediction, error) {
	if strings.ContainsAny(text, "\n\x00") {
		return nil, fmt.Errorf("%w: input contains control characters", ErrPredict)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if k <= 0 {
		k = 1
	}

	confidences := h.detector.ComputeLanguageConfidenceValues(text)
	predictions := make([]Prediction, 0, k)
	for _, cv := range confidences {
		if len(predictions) >= k {
			break
		}
		score := cv.Value()
		if score <= 0 || score < threshold {
			continue
		}
		predictions = append(predictions, Prediction{
			Lang:  h.prefix + strings.ToLower(cv.Language().IsoCode639_1().String()),
			Score: score,
		})
	}
	return predictions, nil
}
