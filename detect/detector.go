package detect

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/tsingjyujing/fastlang/model"
)

var logger = logrus.New()

// LabelPrefix is the classifier-internal label prefix stripped from results.
// Profiles converted from fastText artifacts carry it on every label.
const LabelPrefix = "__label__"

// Result is one detected language with its confidence score, clamped to
// [0, 1].
type Result = model.Prediction

// modelLoader is the resolution seam between the detector and the model
// package. Tests substitute fakes to probe caching and fallback.
type modelLoader interface {
	LoadEmbedded() (model.Handle, error)
	LoadLocal(path string, expectedMD5 string) (model.Handle, error)
	LoadWithDownload(path string, rawURL string, expectedMD5 string) (model.Handle, error)
}

// Detector resolves classifier handles per tier and runs detection calls
// against them. Each Detector owns its own tier cache; handles are never
// shared across detectors even when their configurations coincide.
type Detector struct {
	config Config
	loader modelLoader
	cjk    *cjkNormalizer

	// mu guards the first resolution per tier so that concurrent first-use
	// races load each model at most once per process.
	mu     sync.Mutex
	models map[Tier]model.Handle
}

// NewDetector creates a detector from config. A nil config means
// DefaultConfig. Construction fails if a configured custom model path does
// not exist or the tier selector is unrecognized.
func NewDetector(config *Config) (*Detector, error) {
	cfg := Config{}
	if config != nil {
		cfg = *config
	} else {
		cfg = *DefaultConfig()
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = resolveCacheDir()
	}
	if cfg.DefaultTier == "" {
		cfg.DefaultTier = TierAuto
	}
	if !cfg.DefaultTier.valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, cfg.DefaultTier)
	}
	if cfg.CustomModelPath != "" {
		if _, err := os.Stat(cfg.CustomModelPath); err != nil {
			return nil, fmt.Errorf("%w: custom model %s", model.ErrModelNotFound, cfg.CustomModelPath)
		}
	}

	downloader, err := model.NewDownloader(cfg.Proxy, cfg.DownloadRetries, cfg.DownloadTimeout)
	if err != nil {
		return nil, err
	}

	var cjk *cjkNormalizer
	if cfg.NormalizeCJK {
		cjk, err = newCJKNormalizer()
		if err != nil {
			return nil, err
		}
	}

	return &Detector{
		config: cfg,
		loader: model.NewLoader(downloader, model.WithMemoryBudget(cfg.MemoryBudgetMB)),
		cjk:    cjk,
		models: make(map[Tier]model.Handle),
	}, nil
}

// Detect identifies the language of text, returning up to k results with
// confidence >= threshold, ordered by descending score. An empty tier means
// the configured default. May download and load a model on first use of a
// tier; later calls reuse the cached handle.
func (d *Detector) Detect(text string, tier Tier, k int, threshold float64) ([]Result, error) {
	if tier == "" {
		tier = d.config.DefaultTier
	}
	if !tier.valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}
	if k <= 0 {
		k = 1
	}

	handle, err := d.getModel(tier)
	if err != nil {
		return nil, err
	}

	normalized, err := d.normalize(d.preprocess(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDetection, err)
	}

	predictions, err := handle.Predict(normalized, k, threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDetection, err)
	}

	results := lo.Map(predictions, func(p model.Prediction, _ int) Result {
		return Result{
			Lang:  strings.TrimPrefix(p.Lang, LabelPrefix),
			Score: math.Min(p.Score, 1.0),
		}
	})
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// DetectMultilingual is the top-k convenience wrapper over Detect with the
// configured default tier.
func (d *Detector) DetectMultilingual(text string, k int, threshold float64) ([]Result, error) {
	return d.Detect(text, "", k, threshold)
}

// getModel returns the cached handle for tier, resolving and caching it on
// first use. Full-tier failures fall back to the lite model when the config
// allows it, or when the auto tier hits a memory-class error; the fallback
// result is cached under the lite key only, so the next full request
// retries the full artifact.
func (d *Detector) getModel(tier Tier) (model.Handle, error) {
	switch tier {
	case TierLite:
		return d.getOrLoad(TierLite, d.resolveLite)
	case TierFull, TierAuto:
		handle, err := d.getOrLoad(TierFull, d.resolveFull)
		if err == nil {
			return handle, nil
		}
		fallback := d.config.AllowFallback ||
			(tier == TierAuto && errors.Is(err, model.ErrModelTooLarge))
		if !fallback {
			return nil, err
		}
		logger.WithError(err).Info("Falling back to the lite model for this call")
		return d.getOrLoad(TierLite, d.resolveLite)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}
}

func (d *Detector) getOrLoad(key Tier, resolve func() (model.Handle, error)) (model.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if handle, ok := d.models[key]; ok {
		return handle, nil
	}
	handle, err := resolve()
	if err != nil {
		return nil, err
	}
	d.models[key] = handle
	return handle, nil
}

// resolveLite loads the bundled compact model, unless a custom model path
// overrides tier selection entirely.
func (d *Detector) resolveLite() (model.Handle, error) {
	if d.config.CustomModelPath != "" {
		return d.loader.LoadLocal(d.config.CustomModelPath, d.customVerifyHash())
	}
	return d.loader.LoadEmbedded()
}

// resolveFull loads the full artifact from the cache directory, downloading
// it first when absent. Only the default cache root is auto-created; a
// caller-specified directory that does not exist fails fast instead of
// writing to an arbitrary path.
func (d *Detector) resolveFull() (model.Handle, error) {
	if d.config.CustomModelPath != "" {
		return d.loader.LoadLocal(d.config.CustomModelPath, d.customVerifyHash())
	}

	dir := d.config.CacheDir
	if dir == DefaultCacheDir() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrCacheDirNotFound, err)
		}
	} else if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", model.ErrCacheDirNotFound, dir)
	}

	return d.loader.LoadWithDownload(
		filepath.Join(dir, model.FullModelName),
		model.FullModelURL,
		d.fullVerifyHash(),
	)
}

func (d *Detector) fullVerifyHash() string {
	if d.config.DisableVerify {
		return ""
	}
	if d.config.VerifyHash != "" {
		return d.config.VerifyHash
	}
	return model.FullModelMD5
}

// customVerifyHash only checks custom artifacts when a hash was configured
// explicitly; the built-in checksum belongs to the release artifact.
func (d *Detector) customVerifyHash() string {
	if d.config.DisableVerify {
		return ""
	}
	return d.config.VerifyHash
}
