package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/arnavshah/shiftledger-api/pkg/extract"
	"github.com/arnavshah/shiftledger-api/pkg/models"
	"github.com/arnavshah/shiftledger-api/pkg/normalize"
	"github.com/arnavshah/shiftledger-api/pkg/tokenize"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxImageBytes = 10 << 20

// importOptions are shared by every import endpoint
type importOptions struct {
	Year     int    `json:"year" form:"year"`
	Preview  bool   `json:"preview" form:"preview"`
	Location string `json:"location" form:"location"`
}

// ImportTokens normalizes extraction output posted as JSON
func (h *Handler) ImportTokens(c *gin.Context) {
	var req struct {
		importOptions
		Shifts []models.ExtractedShift `json:"shifts"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runImport(c, "tokens", tokenize.FromExtraction(req.Shifts), req.importOptions)
}

// ImportText tokenizes a pasted schedule note, then normalizes it
func (h *Handler) ImportText(c *gin.Context) {
	var req struct {
		importOptions
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runImport(c, "text", tokenize.ParseText(req.Text), req.importOptions)
}

// ImportImage sends a screenshot to the extraction service, then normalizes the result
func (h *Handler) ImportImage(c *gin.Context) {
	if h.Extractor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image import is not configured"})
		return
	}

	var opts importOptions
	if err := c.ShouldBind(&opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open image"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return
	}
	if len(data) > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds 10 MB"})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	items, err := h.Extractor.Extract(c.Request.Context(), data, mimeType, h.year(opts))
	if err != nil {
		if errors.Is(err, extract.ErrEmptyImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.Log.Warn("schedule extraction failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not read the schedule image, please retry"})
		return
	}

	h.runImport(c, "image", tokenize.FromExtraction(items), opts)
}

func (h *Handler) year(opts importOptions) int {
	if opts.Year > 0 {
		return opts.Year
	}
	return h.now().Year()
}

// runImport normalizes tokens, persists accepted shifts unless previewing,
// and records metrics and usage.
func (h *Handler) runImport(c *gin.Context, source string, tokens []models.RawShiftToken, opts importOptions) {
	location := opts.Location
	if location == "" {
		location = h.Location
	}
	n := &normalize.Normalizer{Location: location, Zone: h.zone()}
	res := n.Normalize(tokens, h.year(opts))

	saved := false
	if !opts.Preview {
		for i, shift := range res.Accepted {
			if err := h.Store.Upsert(c.Request.Context(), shift); err != nil {
				h.Log.Error("import batch partially saved",
					zap.Error(err),
					zap.String("source", source),
					zap.Int("saved", i),
					zap.Int("accepted", len(res.Accepted)),
				)
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":    "Could not save every accepted shift; the batch was partially saved",
					"saved":    res.Accepted[:i],
					"unsaved":  res.Accepted[i:],
					"rejected": res.Rejections(),
				})
				return
			}
		}
		saved = true
	}

	reasons := make([]string, 0, len(res.Rejected))
	for _, r := range res.Rejected {
		reasons = append(reasons, string(r.Reason))
	}
	if h.Metrics != nil {
		h.Metrics.ObserveBatch(source, len(res.Accepted), reasons)
	}
	h.Log.Info("import normalized",
		zap.String("source", source),
		zap.Int("tokens", len(tokens)),
		zap.Int("accepted", len(res.Accepted)),
		zap.Int("rejected", len(res.Rejected)),
		zap.Bool("saved", saved),
	)
	if saved {
		h.RecordUsage(c, len(res.Accepted), len(res.Rejected))
	}

	c.JSON(http.StatusOK, models.ImportResult{
		Accepted: res.Accepted,
		Rejected: res.Rejections(),
		Saved:    saved,
	})
}
