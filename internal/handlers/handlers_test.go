package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"

	"github.com/Brownie44l1/leafdoc/internal/analyzer"
	"github.com/Brownie44l1/leafdoc/internal/catalog"
	"github.com/Brownie44l1/leafdoc/internal/logger"
	"github.com/Brownie44l1/leafdoc/internal/metrics"
	"github.com/Brownie44l1/leafdoc/internal/model"
	"github.com/Brownie44l1/leafdoc/internal/preprocess"
	"github.com/Brownie44l1/leafdoc/internal/report"
	"github.com/Brownie44l1/leafdoc/internal/translate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPredictor struct {
	calls  atomic.Int32
	result model.Prediction
	err    error
}

func (s *stubPredictor) Predict(context.Context, *model.Tensor) (model.Prediction, error) {
	s.calls.Add(1)
	return s.result, s.err
}

var imageShape = []int64{1, 224, 224, 3}

func newTestRouter(t *testing.T, p analyzer.Predictor, tr translate.Translator) *gin.Engine {
	t.Helper()
	return newLimitedRouter(t, p, tr, 10<<20)
}

func newLimitedRouter(t *testing.T, p analyzer.Predictor, tr translate.Translator, maxUpload int64) *gin.Engine {
	t.Helper()
	n, err := preprocess.New(preprocess.Config{})
	if err != nil {
		t.Fatal(err)
	}
	c, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	m := metrics.New()
	log := logger.NewNop()
	svc := analyzer.New(n, p, report.NewBuilder(c, tr, 2, m, log), 1, m, log)
	h := NewHandler(svc, c, imageShape, maxUpload, log)
	return NewRouter(h, RouterOptions{CORS: true, Metrics: m, Log: log})
}

func leafPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 160, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func multipartRequest(t *testing.T, target string, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if file != nil {
		fw, err := w.CreateFormFile("image", "leaf.png")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(file)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &stubPredictor{}, nil)
	rec := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id header")
	}
}

func TestPredictFromImage(t *testing.T) {
	p := &stubPredictor{result: model.Prediction{CategoryID: "Potato___Early_blight", ConfidencePercent: 88.5}}
	r := newTestRouter(t, p, nil)

	rec := serve(r, multipartRequest(t, "/api/v1/predict/image", nil, leafPNG(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got report.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.CategoryID != "Potato___Early_blight" || got.Condition != "Potato - Early blight" || got.Confidence != "88.50%" {
		t.Errorf("report = %+v", got)
	}
	if got.Disease == nil || len(got.Disease.Symptoms) == 0 {
		t.Errorf("expected disease section, got %+v", got.Disease)
	}
}

func TestPredictFromImage_CatalogMiss(t *testing.T) {
	p := &stubPredictor{result: model.Prediction{CategoryID: "Orange___Haunglongbing", ConfidencePercent: 61}}
	r := newTestRouter(t, p, nil)

	rec := serve(r, multipartRequest(t, "/api/v1/predict/image", nil, leafPNG(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["disease"] != nil {
		t.Errorf("disease = %v, want null", got["disease"])
	}
	if got["confidence"] != "61.00%" {
		t.Errorf("confidence = %v", got["confidence"])
	}
}

func TestPredictFromImage_Unreadable(t *testing.T) {
	p := &stubPredictor{}
	r := newTestRouter(t, p, nil)

	rec := serve(r, multipartRequest(t, "/api/v1/predict/image", nil, []byte("corrupt bytes")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	var got ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Error != "invalid_image" {
		t.Errorf("error = %+v", got)
	}
	if p.calls.Load() != 0 {
		t.Errorf("predict called %d times", p.calls.Load())
	}
}

func TestPredictFromImage_MissingFile(t *testing.T) {
	r := newTestRouter(t, &stubPredictor{}, nil)
	rec := serve(r, multipartRequest(t, "/api/v1/predict/image", map[string]string{"lang": "en"}, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing_image") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestPredictFromImage_InferenceFailure(t *testing.T) {
	r := newTestRouter(t, &stubPredictor{err: errors.New("onnx exploded")}, nil)
	rec := serve(r, multipartRequest(t, "/api/v1/predict/image", nil, leafPNG(t)))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "exploded") {
		t.Error("internal error details leaked to client")
	}
}

func TestPredictFromImage_HindiWithFailingTranslator(t *testing.T) {
	p := &stubPredictor{result: model.Prediction{CategoryID: "Apple___Black_rot", ConfidencePercent: 70}}
	failing := translate.Func(func(context.Context, string, language.Tag, language.Tag) (string, error) {
		return "", errors.New("offline")
	})
	r := newTestRouter(t, p, failing)

	rec := serve(r, multipartRequest(t, "/api/v1/predict/image", map[string]string{"lang": "hi"}, leafPNG(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got report.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	c, _ := catalog.Default()
	want, _ := c.Lookup("Apple___Black_rot")
	gotDisease := report.Disease{}
	if got.Disease != nil {
		gotDisease = *got.Disease
	}
	if diff := cmp.Diff(report.Disease{
		Name:        want.Name,
		Description: want.Description,
		Symptoms:    want.Symptoms,
		Treatment:   want.Treatment,
	}, gotDisease); diff != "" {
		t.Errorf("disease mismatch (-want +got):\n%s", diff)
	}
	if got.Language != "hi" {
		t.Errorf("language = %q", got.Language)
	}
}

func TestPredict_RawTensor(t *testing.T) {
	p := &stubPredictor{result: model.Prediction{CategoryID: "Tomato___healthy", ConfidencePercent: 92}}
	r := newTestRouter(t, p, nil)

	body, _ := json.Marshal(model.PredictionRequest{Image: make([]float32, 224*224*3)})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(r, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got model.PredictionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := model.PredictionResponse{Class: "Tomato___healthy", Label: "Tomato - healthy", Confidence: 92, Display: "92.00%"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestPredict_RawTensorWrongSize(t *testing.T) {
	p := &stubPredictor{}
	r := newTestRouter(t, p, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", strings.NewReader(`{"image":[0.1,0.2]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(r, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "shape_mismatch") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if p.calls.Load() != 0 {
		t.Error("predict should not run")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/predict", strings.NewReader(`{"image":`))
	req.Header.Set("Content-Type", "application/json")
	if rec := serve(r, req); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed JSON status = %d", rec.Code)
	}
}

func TestCatalogEntry(t *testing.T) {
	r := newTestRouter(t, &stubPredictor{}, nil)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/Grape___Black_rot", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Grape - Black rot") {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/Nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestIndex_Languages(t *testing.T) {
	r := newTestRouter(t, &stubPredictor{}, nil)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Plant Disease Classifier") {
		t.Error("English title missing")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "hi-IN,hi;q=0.9")
	rec = serve(r, req)
	if !strings.Contains(rec.Body.String(), "पौधे रोग पहचान प्रणाली") {
		t.Error("Hindi title missing for Accept-Language hi")
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/?lang=en", nil))
	if !strings.Contains(rec.Body.String(), `lang="en"`) {
		t.Error("explicit lang ignored")
	}
}

func TestAnalyzePage(t *testing.T) {
	p := &stubPredictor{result: model.Prediction{CategoryID: "Tomato___Leaf_Mold", ConfidencePercent: 93.456}}
	r := newTestRouter(t, p, nil)

	rec := serve(r, multipartRequest(t, "/analyze", map[string]string{"lang": "en"}, leafPNG(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Tomato - Leaf Mold", "93.46%", `<ul id="symptoms">`, `<ol id="treatment">`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestAnalyzePage_NoRecordAndInvalidImage(t *testing.T) {
	p := &stubPredictor{result: model.Prediction{CategoryID: "Squash___Powdery_mildew", ConfidencePercent: 40}}
	r := newTestRouter(t, p, nil)

	rec := serve(r, multipartRequest(t, "/analyze", nil, leafPNG(t)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `id="no-record"`) || strings.Contains(rec.Body.String(), `id="symptoms"`) {
		t.Error("catalog miss should render the prediction without a descriptive section")
	}

	rec = serve(r, multipartRequest(t, "/analyze", map[string]string{"lang": "hi"}, []byte("nope")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "कृपया एक मान्य छवि अपलोड करें") {
		t.Error("localized invalid-image message missing")
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, &stubPredictor{}, nil)
	rec := serve(r, httptest.NewRequest(http.MethodOptions, "/api/v1/predict/image", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	p := &stubPredictor{result: model.Prediction{CategoryID: "Corn_(maize)___healthy", ConfidencePercent: 99}}
	r := newTestRouter(t, p, nil)
	serve(r, multipartRequest(t, "/api/v1/predict/image", nil, leafPNG(t)))

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `leafdoc_predictions_total{category="Corn_(maize)___healthy"} 1`) {
		t.Errorf("metrics missing prediction counter:\n%s", rec.Body.String())
	}
}

func TestUploadTooLarge(t *testing.T) {
	p := &stubPredictor{}
	r := newLimitedRouter(t, p, nil, 1024)
	big := bytes.Repeat([]byte{0x89}, 8192)

	rec := serve(r, multipartRequest(t, "/api/v1/predict/image", nil, big))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413; body = %s", rec.Code, rec.Body.String())
	}
	var got ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Error != "too_large" || strings.Contains(got.Message, "No image file") {
		t.Errorf("error = %+v", got)
	}

	rec = serve(r, multipartRequest(t, "/analyze", nil, big))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("page status = %d, want 413", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "The image is too large") {
		t.Error("page should explain the size limit")
	}

	raw, _ := json.Marshal(model.PredictionRequest{Image: make([]float32, 2048)})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if rec := serve(r, req); rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("raw tensor status = %d, want 413", rec.Code)
	}

	if p.calls.Load() != 0 {
		t.Error("predict should not run for oversized requests")
	}
}
