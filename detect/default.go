package detect

import (
	"strings"
	"sync"
)

// The shared default detector backs the package-level entry points. It is
// created lazily so importing the package never touches the filesystem.
var (
	defaultOnce     sync.Once
	defaultDetector *Detector
	defaultErr      error
)

// Default returns the process-wide detector built from DefaultConfig.
func Default() (*Detector, error) {
	defaultOnce.Do(func() {
		defaultDetector, defaultErr = NewDetector(DefaultConfig())
	})
	return defaultDetector, defaultErr
}

// Detect is the simple entry point. With a nil config it uses the shared
// default detector; an explicit config gets its own detector and model cache,
// so handles are never shared across configurations.
func Detect(text string, tier Tier, k int, threshold float64, config *Config) ([]Result, error) {
	detector, err := detectorFor(config)
	if err != nil {
		return nil, err
	}
	return detector.Detect(text, tier, k, threshold)
}

// DetectMultilingual is the top-k convenience entry point.
func DetectMultilingual(text string, k int, threshold float64, config *Config) ([]Result, error) {
	detector, err := detectorFor(config)
	if err != nil {
		return nil, err
	}
	return detector.DetectMultilingual(text, k, threshold)
}

func detectorFor(config *Config) (*Detector, error) {
	if config != nil {
		return NewDetector(config)
	}
	return Default()
}

// DetectLanguage returns a two-letter uppercase language code for text using
// the lite model, or "EN" when nothing is detected. Japanese results without
// any kana are corrected to Chinese: kanji-only text is indistinguishable
// from Chinese by script, and the classifier leans the wrong way on it.
func DetectLanguage(text string) (string, error) {
	results, err := Detect(text, TierLite, 1, 0, nil)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "EN", nil
	}
	code := strings.ToUpper(results[0].Lang)
	if code == "JA" && !containsKana(text) {
		code = "ZH"
	}
	return code, nil
}

func containsKana(s string) bool {
	for _, r := range s {
		if r > 0x3040 && r < 0x30FF {
			return true
		}
	}
	return false
}
