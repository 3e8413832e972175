package detect

import (
	"os"
	"path/filepath"
	"time"

	"github.com/tsingjyujing/fastlang/model"
)

// EnvCacheDir overrides the cache directory for the full model artifact.
const EnvCacheDir = "FASTLANG_CACHE"

const cacheDirName = "fastlang"

// DefaultCacheDir is the cache root used when no override is configured.
// It is the only directory the detector will create on its own; any other
// configured cache directory must already exist.
func DefaultCacheDir() string {
	return filepath.Join(os.TempDir(), cacheDirName)
}

func resolveCacheDir() string {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return dir
	}
	return DefaultCacheDir()
}

// Config holds detector configuration. It is copied at construction and not
// read again, so mutating a Config after NewDetector has no effect.
type Config struct {
	// CacheDir is where the full model artifact lives. Empty means the
	// FASTLANG_CACHE environment override, else the default cache root.
	CacheDir string

	// CustomModelPath overrides tier selection entirely. The file must exist
	// at construction time.
	CustomModelPath string

	// Proxy is an optional HTTP(S) proxy URL for model downloads.
	Proxy string

	// VerifyHash is the expected MD5 of the model artifact. Empty means the
	// built-in checksum for the full model and no check for custom models.
	VerifyHash string

	// DisableVerify skips the checksum warning entirely.
	DisableVerify bool

	// AllowFallback substitutes the lite model when full-tier resolution
	// fails. The substitution is per-call and never cached.
	AllowFallback bool

	// NormalizeInput lowercases all-caps Latin input, which the classifier
	// otherwise tends to misread as Japanese.
	NormalizeInput bool

	// NormalizeCJK applies NFKC plus traditional-to-simplified conversion to
	// the text fed into the classifier. Off by default.
	NormalizeCJK bool

	// MaxInputLength truncates input to this many characters. Zero disables
	// truncation.
	MaxInputLength int

	// DefaultTier is used when a detect call passes an empty tier.
	DefaultTier Tier

	// MemoryBudgetMB caps the memory floor a model profile may declare.
	// Zero means unlimited.
	MemoryBudgetMB int64

	// DownloadRetries and DownloadTimeout bound the download of the full
	// model artifact. Negative retries and zero timeout mean the defaults.
	DownloadRetries int
	DownloadTimeout time.Duration
}

// DefaultConfig returns the configuration used by the package-level entry
// points: auto tier, fallback enabled, case normalization on.
func DefaultConfig() *Config {
	return &Config{
		CacheDir:        resolveCacheDir(),
		AllowFallback:   true,
		NormalizeInput:  true,
		DefaultTier:     TierAuto,
		DownloadRetries: model.DefaultRetryMax,
		DownloadTimeout: model.DefaultDownloadTimeout,
	}
}
