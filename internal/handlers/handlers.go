package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Brownie44l1/leafdoc/internal/analyzer"
	"github.com/Brownie44l1/leafdoc/internal/catalog"
	"github.com/Brownie44l1/leafdoc/internal/i18n"
	"github.com/Brownie44l1/leafdoc/internal/logger"
	"github.com/Brownie44l1/leafdoc/internal/model"
	"github.com/Brownie44l1/leafdoc/internal/preprocess"
)

const imageField = "image"

var errNoUpload = errors.New("no image uploaded")

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type Handler struct {
	analyzer   *analyzer.Service
	catalog    *catalog.Catalog
	inputShape []int64
	maxUpload  int64
	log        logger.Logger
}

func NewHandler(a *analyzer.Service, c *catalog.Catalog, inputShape []int64, maxUpload int64, log logger.Logger) *Handler {
	return &Handler{
		analyzer:   a,
		catalog:    c,
		inputShape: append([]int64(nil), inputShape...),
		maxUpload:  maxUpload,
		log:        log,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Predict classifies a raw NHWC tensor posted as {"image": [...]}.
func (h *Handler) Predict(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	var req model.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if tooLarge(err) {
			sendError(c, http.StatusRequestEntityTooLarge, "too_large",
				fmt.Sprintf("Request body exceeds %d bytes", h.maxUpload))
			return
		}
		sendError(c, http.StatusBadRequest, "invalid_json", "Invalid JSON")
		return
	}

	expectedSize := 1
	for _, dim := range h.inputShape {
		expectedSize *= int(dim)
	}
	if len(req.Image) != expectedSize {
		sendError(c, http.StatusBadRequest, "shape_mismatch",
			fmt.Sprintf("Expected %d values, got %d", expectedSize, len(req.Image)))
		return
	}

	ctx := c.Request.Context()
	result, err := h.analyzer.PredictTensor(ctx, &model.Tensor{Shape: h.inputShape, Data: req.Image})
	if err != nil {
		if errors.Is(err, model.ErrShapeMismatch) {
			sendError(c, http.StatusBadRequest, "shape_mismatch", err.Error())
			return
		}
		h.log.Errorf(ctx, "prediction error: %v", err)
		sendError(c, http.StatusInternalServerError, "prediction_failed", "Prediction failed")
		return
	}

	c.JSON(http.StatusOK, model.NewPredictionResponse(result))
}

// PredictFromImage classifies a multipart upload and returns the report.
func (h *Handler) PredictFromImage(c *gin.Context) {
	ctx := c.Request.Context()

	file, header, err := h.openUpload(c)
	lang := resolveLanguage(c)
	if err != nil {
		if tooLarge(err) {
			sendError(c, http.StatusRequestEntityTooLarge, "too_large", lang.Strings().UploadTooLarge)
			return
		}
		sendError(c, http.StatusBadRequest, "missing_image",
			"No image file provided. Use 'image' as the form field name")
		return
	}
	defer file.Close()

	h.log.Infof(ctx, "received file: %s, size: %d bytes", header.Filename, header.Size)

	result, err := h.analyzer.Analyze(ctx, file, lang)
	if err != nil {
		if errors.Is(err, preprocess.ErrUnreadableImage) {
			h.log.Infof(ctx, "rejected upload %s: %v", header.Filename, err)
			sendError(c, http.StatusBadRequest, "invalid_image", lang.Strings().InvalidImage)
			return
		}
		h.log.Errorf(ctx, "prediction error: %v", err)
		sendError(c, http.StatusInternalServerError, "prediction_failed", "Prediction failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// CatalogEntry returns the descriptive record for one category.
func (h *Handler) CatalogEntry(c *gin.Context) {
	id := c.Param("id")
	rec, ok := h.catalog.Lookup(id)
	if !ok {
		sendError(c, http.StatusNotFound, "not_found", fmt.Sprintf("No record for %q", id))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category_id": id,
		"condition":   model.DisplayLabel(id),
		"record":      rec,
	})
}

// Index renders the upload page.
func (h *Handler) Index(c *gin.Context) {
	lang := resolveLanguage(c)
	c.HTML(http.StatusOK, pageTemplate, newPage(lang, nil, ""))
}

// Analyze handles the page's upload form and renders the result.
func (h *Handler) Analyze(c *gin.Context) {
	ctx := c.Request.Context()

	file, _, err := h.openUpload(c)
	lang := resolveLanguage(c)
	t := lang.Strings()
	if err != nil {
		if tooLarge(err) {
			c.HTML(http.StatusRequestEntityTooLarge, pageTemplate, newPage(lang, nil, t.UploadTooLarge))
			return
		}
		c.HTML(http.StatusBadRequest, pageTemplate, newPage(lang, nil, t.UploadInfo))
		return
	}
	defer file.Close()

	result, err := h.analyzer.Analyze(ctx, file, lang)
	if err != nil {
		if errors.Is(err, preprocess.ErrUnreadableImage) {
			c.HTML(http.StatusBadRequest, pageTemplate, newPage(lang, nil, t.InvalidImage))
			return
		}
		h.log.Errorf(ctx, "prediction error: %v", err)
		c.HTML(http.StatusInternalServerError, pageTemplate, newPage(lang, nil, "Prediction failed"))
		return
	}

	c.HTML(http.StatusOK, pageTemplate, newPage(lang, &result, ""))
}

func (h *Handler) openUpload(c *gin.Context) (multipart.File, *multipart.FileHeader, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	header, err := c.FormFile(imageField)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errNoUpload, err)
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errNoUpload, err)
	}
	return file, header, nil
}

// tooLarge reports whether err came from the request body size limit.
func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// resolveLanguage picks the request language once: explicit lang parameter,
// then Accept-Language, then English.
func resolveLanguage(c *gin.Context) i18n.Language {
	explicit := c.Query("lang")
	if explicit == "" && c.Request.MultipartForm != nil {
		if v := c.Request.MultipartForm.Value["lang"]; len(v) > 0 {
			explicit = v[0]
		}
	}
	return i18n.Resolve(explicit, c.GetHeader("Accept-Language"))
}

func sendError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: message})
}
