package model

import "errors"

// Sentinel errors for model resolution.
// Callers branch on these with errors.Is, in particular the detector's
// fallback logic which must distinguish a memory-class failure from a
// missing or corrupt artifact.
var (
	// ErrModelNotFound indicates the model file does not exist and no
	// download source is available.
	ErrModelNotFound = errors.New("model: model file not found")

	// ErrDownloadFailed indicates the artifact could not be fetched after
	// exhausting the retry budget.
	ErrDownloadFailed = errors.New("model: download failed")

	// ErrModelLoad indicates the classifier rejected the artifact after all
	// load strategies were exhausted.
	ErrModelLoad = errors.New("model: failed to load model")

	// ErrModelTooLarge indicates the model declares a memory floor above the
	// configured budget. This is the only error class the auto tier is
	// allowed to recover from on its own.
	ErrModelTooLarge = errors.New("model: model too large for memory budget")

	// ErrCacheDirNotFound indicates a caller-specified cache directory does
	// not exist. Only the default cache root is auto-created.
	ErrCacheDirNotFound = errors.New("model: cache directory not found")

	// ErrInvalidProfile indicates the profile artifact is malformed.
	ErrInvalidProfile = errors.New("model: invalid model profile")

	// ErrPredict indicates the classifier rejected the input of a predict
	// call. This is a detection failure, not a loading failure.
	ErrPredict = errors.New("model: classifier rejected input")
)
