package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/tsingjyujing/fastlang/detect"
	"github.com/tsingjyujing/fastlang/split"
)

var logger = logrus.New()

// Controller serves the detection API over HTTP. It owns a single detector,
// so all requests share one model cache per tier.
type Controller struct {
	detector *detect.Detector
}

// NewController creates a controller around a detector built from config.
// A nil config means the library defaults.
func NewController(config *detect.Config) (*Controller, error) {
	detector, err := detect.NewDetector(config)
	if err != nil {
		return nil, err
	}
	return &Controller{detector: detector}, nil
}

func handleGenericError(echoCtx echo.Context, err error, status int) error {
	logger.WithError(err).WithField("status", status).Error("Error handling request")
	return echoCtx.JSON(status, map[string]string{"status": err.Error()})
}

func handleInternalError(echoCtx echo.Context, err error) error {
	return handleGenericError(echoCtx, err, http.StatusInternalServerError)
}

type DetectParams struct {
	Text      string  `json:"text"`
	Model     string  `json:"model"`
	K         int     `json:"k"`
	Threshold float64 `json:"threshold"`
}

// DetectText handles POST /api/v1/detect.
func (c *Controller) DetectText(echoCtx echo.Context) error {
	var params DetectParams
	if err := echoCtx.Bind(&params); err != nil {
		return handleGenericError(echoCtx, err, http.StatusBadRequest)
	}
	if params.Text == "" {
		return echoCtx.JSON(http.StatusBadRequest, map[string]string{"status": "text is required"})
	}
	tier, err := detect.ParseTier(params.Model)
	if err != nil {
		return handleGenericError(echoCtx, err, http.StatusBadRequest)
	}
	results, err := c.detector.Detect(params.Text, tier, params.K, params.Threshold)
	if err != nil {
		return handleInternalError(echoCtx, err)
	}
	return echoCtx.JSON(http.StatusOK, results)
}

type SegmentParams struct {
	Text        string `json:"text"`
	Model       string `json:"model"`
	CellLimit   int    `json:"cell_limit"`
	MergeSame   *bool  `json:"merge_same"`
	FilterEmpty *bool  `json:"filter_empty"`
}

// SegmentText handles POST /api/v1/segment.
func (c *Controller) SegmentText(echoCtx echo.Context) error {
	var params SegmentParams
	if err := echoCtx.Bind(&params); err != nil {
		return handleGenericError(echoCtx, err, http.StatusBadRequest)
	}
	if params.Text == "" {
		return echoCtx.JSON(http.StatusBadRequest, map[string]string{"status": "text is required"})
	}
	tier := detect.TierLite
	if params.Model != "" {
		var err error
		if tier, err = detect.ParseTier(params.Model); err != nil {
			return handleGenericError(echoCtx, err, http.StatusBadRequest)
		}
	}

	opts := split.DefaultOptions()
	if params.CellLimit > 0 {
		opts.CellLimit = params.CellLimit
	}
	if params.MergeSame != nil {
		opts.MergeSame = *params.MergeSame
	}
	if params.FilterEmpty != nil {
		opts.FilterEmpty = *params.FilterEmpty
	}

	segmenter := split.NewSegmenter(split.NewDetectorAdapter(c.detector, tier), nil)
	cells, err := segmenter.Segment(params.Text, opts)
	if err != nil {
		return handleInternalError(echoCtx, err)
	}
	return echoCtx.JSON(http.StatusOK, cells)
}
