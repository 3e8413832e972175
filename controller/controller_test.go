package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsingjyujing/fastlang/detect"
	"github.com/tsingjyujing/fastlang/split"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	cfg := detect.DefaultConfig()
	cfg.DefaultTier = detect.TierLite
	cfg.CacheDir = t.TempDir()
	c, err := NewController(cfg)
	require.NoError(t, err)
	return c
}

func doJSON(t *testing.T, handler echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestDetectText(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(t, c.DetectText, `{"text": "Hello, how are you doing today?", "model": "lite"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var results []detect.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.NotEmpty(t, results)
	assert.Equal(t, "en", results[0].Lang)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestDetectTextTopK(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(t, c.DetectText, `{"text": "bonjour tout le monde", "model": "lite", "k": 3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var results []detect.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.LessOrEqual(t, len(results), 3)
}

func TestDetectTextMissingText(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(t, c.DetectText, `{"model": "lite"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetectTextInvalidModel(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(t, c.DetectText, `{"text": "hello", "model": "gigantic"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetectTextMalformedBody(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(t, c.DetectText, `{"text": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSegmentText(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(t, c.SegmentText, `{"text": "This is a reasonably long English sentence about nothing in particular. 这是一段关于日常生活的比较长的中文句子。"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var cells []split.Cell
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cells))
	require.Len(t, cells, 2)
	assert.Equal(t, "en", cells[0].Lang)
	assert.Equal(t, "zh", cells[1].Lang)
}

func TestSegmentTextNoMerge(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(t, c.SegmentText, `{"text": "One sentence here. Another sentence there.", "merge_same": false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var cells []split.Cell
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cells))
	assert.Len(t, cells, 2)
}

func TestSegmentTextMissingText(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(t, c.SegmentText, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSegmentTextInvalidModel(t *testing.T) {
	c := newTestController(t)

	rec := doJSON(t, c.SegmentText, `{"text": "hello", "model": "gigantic"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
