package model

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Well-known full-tier artifact. The lite profile is compiled into the
// binary; the full profile lives in the cache directory and is fetched from
// the release URL on first use.
const (
	FullModelURL  = "https://github.com/tsingjyujing/fastlang/releases/download/models-v1/lid.full.profile.json"
	FullModelName = "lid.full.profile.json"

	// FullModelMD5 is the published checksum of the release artifact above.
	// Verification is advisory: a mismatch logs a warning and the load is
	// still attempted.
	FullModelMD5 = "3c2f9d0a51b44c1e8f67a02d9b5e71c4"
)

//go:embed resources/lite.profile.json
var liteProfileBytes []byte

// Loader resolves model artifacts into classifier handles. A zero memory
// budget disables the memory floor check.
type Loader struct {
	downloader     *Downloader
	memoryBudgetMB int64
	loadFile       func(path string) (Handle, error)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithMemoryBudget caps the memory floor a profile may declare, in MB.
// Profiles above the cap fail with ErrModelTooLarge before any allocation.
func WithMemoryBudget(mb int64) LoaderOption {
	return func(l *Loader) {
		l.memoryBudgetMB = mb
	}
}

// NewLoader creates a loader. downloader may be nil if LoadWithDownload is
// never used.
func NewLoader(downloader *Downloader, opts ...LoaderOption) *Loader {
	l := &Loader{downloader: downloader}
	l.loadFile = l.loadProfileFile
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadEmbedded loads the compact bundled profile. No filesystem or network
// access is involved.
func (l *Loader) LoadEmbedded() (Handle, error) {
	profile, err := ParseProfile(liteProfileBytes)
	if err != nil {
		return nil, err
	}
	return l.buildHandle(profile)
}

// LoadLocal loads a model artifact from path, trying each platform load
// strategy in order. expectedMD5 may be empty to skip verification; a
// mismatch is a warning, not an error.
func (l *Loader) LoadLocal(path string, expectedMD5 string) (Handle, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
	}
	if expectedMD5 != "" && !Verify(path, expectedMD5) {
		logger.Warnf("Checksum verification failed for %s, prediction accuracy may be affected", path)
	}

	var lastErr error
	for _, strategy := range loadStrategies() {
		handle, err := strategy.load(l, path)
		if err == nil {
			return handle, nil
		}
		// A different path spelling cannot fix these.
		if errors.Is(err, ErrModelTooLarge) || errors.Is(err, ErrInvalidProfile) {
			return nil, err
		}
		logger.WithError(err).Debugf("Load strategy %q failed for %s", strategy.name, path)
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrModelLoad, path, lastErr)
}

// LoadWithDownload downloads the artifact to path first if it is absent,
// then loads it. An absent file with no URL is ErrModelNotFound.
func (l *Loader) LoadWithDownload(path string, rawURL string, expectedMD5 string) (Handle, error) {
	if _, err := os.Stat(path); err != nil {
		if rawURL == "" {
			return nil, fmt.Errorf("%w: %s and no download source", ErrModelNotFound, path)
		}
		if l.downloader == nil {
			return nil, fmt.Errorf("%w: no downloader configured", ErrDownloadFailed)
		}
		if err := l.downloader.Fetch(rawURL, path); err != nil {
			return nil, err
		}
	}
	return l.LoadLocal(path, expectedMD5)
}

func (l *Loader) buildHandle(p *Profile) (Handle, error) {
	if l.memoryBudgetMB > 0 && p.MinMemoryMB > l.memoryBudgetMB {
		return nil, fmt.Errorf("%w: profile %q requires %d MB, budget is %d MB",
			ErrModelTooLarge, p.Name, p.MinMemoryMB, l.memoryBudgetMB)
	}
	return newLinguaHandle(p)
}

func (l *Loader) loadProfileFile(path string) (Handle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	profile, err := ParseProfile(data)
	if err != nil {
		return nil, err
	}
	return l.buildHandle(profile)
}

// loadStrategy is one way of presenting an artifact path to the classifier.
// The platform files decide which strategies apply.
type loadStrategy struct {
	name string
	load func(*Loader, string) (Handle, error)
}

func loadDirect(l *Loader, path string) (Handle, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return l.loadFile(abs)
}

func loadRelative(l *Loader, path string) (Handle, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil {
		return nil, err
	}
	return l.loadFile(rel)
}

// loadTempCopy copies the artifact to a temporary file with a guaranteed-safe
// name and loads from there. The copy is removed on every exit path; if
// removal itself fails, deletion is deferred to the next restart where the
// platform supports that.
func loadTempCopy(l *Loader, path string) (Handle, error) {
	tmp, err := os.CreateTemp("", "fastlang-*.profile.json")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			logger.WithError(err).Warnf("Failed to delete temporary model copy %s", tmpPath)
			if err := scheduleDeleteOnReboot(tmpPath); err != nil {
				logger.WithError(err).Warnf("Failed to schedule deferred deletion of %s", tmpPath)
			}
		}
	}()

	src, err := os.Open(path)
	if err != nil {
		tmp.Close()
		return nil, err
	}
	_, copyErr := io.Copy(tmp, src)
	src.Close()
	if closeErr := tmp.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return nil, copyErr
	}
	return l.loadFile(tmpPath)
}
