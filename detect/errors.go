package detect

import "errors"

var (
	// ErrInvalidTier indicates an unrecognized model tier selector.
	ErrInvalidTier = errors.New("detect: invalid model tier")

	// ErrDetection indicates the classifier rejected a predict call. This is
	// distinct from the model resolution errors in the model package: the
	// classifier was obtained, but refused the input.
	ErrDetection = errors.New("detect: language detection failed")
)
