package detect

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsingjyujing/fastlang/model"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fakeHandle records what reaches the classifier and replays canned
// predictions.
type fakeHandle struct {
	lastText string
	lastK    int
	preds    []model.Prediction
	err      error
}

func (h *fakeHandle) Predict(text string, k int, threshold float64) ([]model.Prediction, error) {
	h.lastText = text
	h.lastK = k
	if h.err != nil {
		return nil, h.err
	}
	return h.preds, nil
}

// fakeLoader counts resolutions per source so tests can probe caching and
// fallback without touching the filesystem or the network.
type fakeLoader struct {
	embedded      model.Handle
	embeddedErr   error
	download      model.Handle
	downloadErr   error
	local         model.Handle
	localErr      error
	embeddedCalls int
	downloadCalls int
	localCalls    int
}

func (f *fakeLoader) LoadEmbedded() (model.Handle, error) {
	f.embeddedCalls++
	return f.embedded, f.embeddedErr
}

func (f *fakeLoader) LoadLocal(path string, expectedMD5 string) (model.Handle, error) {
	f.localCalls++
	return f.local, f.localErr
}

func (f *fakeLoader) LoadWithDownload(path string, rawURL string, expectedMD5 string) (model.Handle, error) {
	f.downloadCalls++
	return f.download, f.downloadErr
}

func newTestDetector(t *testing.T, cfg *Config, loader modelLoader) *Detector {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.CacheDir == "" || cfg.CacheDir == DefaultCacheDir() {
		cfg.CacheDir = t.TempDir()
	}
	d, err := NewDetector(cfg)
	require.NoError(t, err)
	d.loader = loader
	return d
}

func TestDetectCachesLiteHandle(t *testing.T) {
	loader := &fakeLoader{embedded: &fakeHandle{preds: []model.Prediction{{Lang: "en", Score: 0.9}}}}
	d := newTestDetector(t, nil, loader)

	for i := 0; i < 3; i++ {
		results, err := d.Detect("hello world", TierLite, 1, 0)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "en", results[0].Lang)
	}
	assert.Equal(t, 1, loader.embeddedCalls, "the lite model must be resolved once and cached")
}

func TestDetectFullTier(t *testing.T) {
	loader := &fakeLoader{download: &fakeHandle{preds: []model.Prediction{{Lang: "zh", Score: 0.95}}}}
	d := newTestDetector(t, nil, loader)

	results, err := d.Detect("你好世界", TierFull, 1, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "zh", results[0].Lang)
	assert.Equal(t, 1, loader.downloadCalls)
	assert.Zero(t, loader.embeddedCalls)
}

func TestDetectFullFailureFallsBackToLite(t *testing.T) {
	loader := &fakeLoader{
		downloadErr: model.ErrDownloadFailed,
		embedded:    &fakeHandle{preds: []model.Prediction{{Lang: "en", Score: 0.8}}},
	}
	d := newTestDetector(t, nil, loader) // AllowFallback is on by default

	results, err := d.Detect("hello world", TierFull, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "en", results[0].Lang)

	// The substitution is not cached under the full key: a later full
	// request resolves the full artifact again.
	_, err = d.Detect("hello world", TierFull, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.downloadCalls)
	assert.Equal(t, 1, loader.embeddedCalls, "the lite fallback itself stays cached")
}

func TestDetectFullFailureWithoutFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowFallback = false
	loader := &fakeLoader{downloadErr: model.ErrDownloadFailed}
	d := newTestDetector(t, cfg, loader)

	_, err := d.Detect("hello world", TierFull, 1, 0)
	assert.ErrorIs(t, err, model.ErrDownloadFailed)
	assert.Zero(t, loader.embeddedCalls)
}

func TestDetectAutoFallsBackOnMemoryErrorEvenWhenStrict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowFallback = false
	loader := &fakeLoader{
		downloadErr: model.ErrModelTooLarge,
		embedded:    &fakeHandle{preds: []model.Prediction{{Lang: "en", Score: 0.7}}},
	}
	d := newTestDetector(t, cfg, loader)

	results, err := d.Detect("hello world", TierAuto, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "en", results[0].Lang)
}

func TestDetectAutoStrictPropagatesOtherErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowFallback = false
	loader := &fakeLoader{downloadErr: model.ErrDownloadFailed}
	d := newTestDetector(t, cfg, loader)

	_, err := d.Detect("hello world", TierAuto, 1, 0)
	assert.ErrorIs(t, err, model.ErrDownloadFailed)
}

func TestDetectInvalidTier(t *testing.T) {
	d := newTestDetector(t, nil, &fakeLoader{})

	_, err := d.Detect("hello world", Tier("medium"), 1, 0)
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestDetectNormalizesInputBeforePrediction(t *testing.T) {
	handle := &fakeHandle{preds: []model.Prediction{{Lang: "en", Score: 0.9}}}
	d := newTestDetector(t, nil, &fakeLoader{embedded: handle})

	_, err := d.Detect("FIRST LINE\nSECOND LINE", TierLite, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "first line second line", handle.lastText,
		"newlines become spaces and all-caps input is lowercased")
}

func TestDetectCaseNormalizationDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NormalizeInput = false
	handle := &fakeHandle{preds: []model.Prediction{{Lang: "en", Score: 0.9}}}
	d := newTestDetector(t, cfg, &fakeLoader{embedded: handle})

	_, err := d.Detect("ALL CAPS TEXT", TierLite, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "ALL CAPS TEXT", handle.lastText)
}

func TestDetectStripsLabelPrefixAndClampsScores(t *testing.T) {
	handle := &fakeHandle{preds: []model.Prediction{
		{Lang: "__label__ja", Score: 1.4},
		{Lang: "__label__zh", Score: 0.3},
	}}
	d := newTestDetector(t, nil, &fakeLoader{embedded: handle})

	results, err := d.Detect("こんにちは", TierLite, 2, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, Result{Lang: "ja", Score: 1.0}, results[0])
	assert.Equal(t, Result{Lang: "zh", Score: 0.3}, results[1])
}

func TestDetectSortsByDescendingScore(t *testing.T) {
	handle := &fakeHandle{preds: []model.Prediction{
		{Lang: "de", Score: 0.2},
		{Lang: "en", Score: 0.7},
		{Lang: "fr", Score: 0.5},
	}}
	d := newTestDetector(t, nil, &fakeLoader{embedded: handle})

	results, err := d.Detect("guten tag", TierLite, 3, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "en", results[0].Lang)
	assert.Equal(t, "fr", results[1].Lang)
	assert.Equal(t, "de", results[2].Lang)
}

func TestDetectClampsK(t *testing.T) {
	handle := &fakeHandle{preds: []model.Prediction{{Lang: "en", Score: 0.9}}}
	d := newTestDetector(t, nil, &fakeLoader{embedded: handle})

	_, err := d.Detect("hello", TierLite, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, handle.lastK)
}

func TestDetectWrapsPredictionErrors(t *testing.T) {
	handle := &fakeHandle{err: errors.New("engine exploded")}
	d := newTestDetector(t, nil, &fakeLoader{embedded: handle})

	_, err := d.Detect("hello", TierLite, 1, 0)
	assert.ErrorIs(t, err, ErrDetection)
}

func TestDetectMultilingualUsesDefaultTier(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultTier = TierLite
	handle := &fakeHandle{preds: []model.Prediction{{Lang: "en", Score: 0.9}}}
	loader := &fakeLoader{embedded: handle}
	d := newTestDetector(t, cfg, loader)

	results, err := d.DetectMultilingual("hello world", 2, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, loader.embeddedCalls)
	assert.Zero(t, loader.downloadCalls)
}

func TestDetectCustomModelOverridesTier(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CustomModelPath = filepath.Join(t.TempDir(), "custom.profile.json")
	writeFile(t, cfg.CustomModelPath, `{"name":"custom","engine":"lingua","languages":["en"]}`)

	handle := &fakeHandle{preds: []model.Prediction{{Lang: "en", Score: 0.9}}}
	loader := &fakeLoader{local: handle}
	d := newTestDetector(t, cfg, loader)

	for _, tier := range []Tier{TierLite, TierFull} {
		_, err := d.Detect("hello", tier, 1, 0)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, loader.localCalls)
	assert.Zero(t, loader.embeddedCalls)
	assert.Zero(t, loader.downloadCalls)
}

func TestNewDetectorMissingCustomModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CustomModelPath = filepath.Join(t.TempDir(), "absent.profile.json")

	_, err := NewDetector(cfg)
	assert.ErrorIs(t, err, model.ErrModelNotFound)
}

func TestNewDetectorInvalidDefaultTier(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultTier = Tier("medium")

	_, err := NewDetector(cfg)
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestDetectFullMissingCacheDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowFallback = false
	cfg.CacheDir = filepath.Join(t.TempDir(), "does-not-exist")

	d, err := NewDetector(cfg)
	require.NoError(t, err)
	d.loader = &fakeLoader{}

	_, err = d.Detect("hello", TierFull, 1, 0)
	assert.ErrorIs(t, err, model.ErrCacheDirNotFound)
}
