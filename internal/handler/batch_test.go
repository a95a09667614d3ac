package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/handler"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/ingest"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/media"
	"github.com/jonesrussell/north-cloud/content-ingestor/internal/schedule"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type recordingCreator struct {
	mu       sync.Mutex
	payloads []domain.PostPayload
}

func (r *recordingCreator) CreatePost(_ context.Context, payload domain.PostPayload) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return "post-" + payload.Body, nil
}

type stubUploader struct{}

func (stubUploader) Upload(_ context.Context, _ []byte, meta media.UploadMetadata) (media.UploadResult, error) {
	return media.UploadResult{DurableID: "media/" + meta.Filename}, nil
}

func setupRouter(t *testing.T) (*gin.Engine, *recordingCreator) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	creator := &recordingCreator{}
	resolver := schedule.NewResolver(nil)
	binder := media.NewBinder(stubUploader{}, 0, nil)
	orch := ingest.NewOrchestrator(creator, binder, resolver, nil)
	svc := ingest.NewService(orch, resolver, nil, nil, nil)

	h := handler.NewBatchHandler(svc, nil, 0)
	r := gin.New()
	r.POST("/batches", h.Submit)
	r.POST("/batches/preview", h.Preview)
	r.GET("/batches/template", h.Template)
	return r, creator
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmit_JSONScheduledRecord(t *testing.T) {
	r, creator := setupRouter(t)

	w := postJSON(t, r, "/batches", map[string]any{
		"text": "[EN] Hello\n[TAGS] #crypto #blockchain #newfeature\n[TIME] 2024-01-15T10:00:00Z\n[END]\n",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result ingest.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Report.Succeeded)
	assert.Equal(t, 1, result.Report.Scheduled)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, "post-Hello", result.Outcomes[0].PostID)

	require.Len(t, creator.payloads, 1)
	assert.Equal(t, domain.StatusScheduled, creator.payloads[0].Status)
}

func TestSubmit_NoRecordsIsUnprocessable(t *testing.T) {
	r, creator := setupRouter(t)

	w := postJSON(t, r, "/batches", map[string]any{"text": "[CN] only a translation\n[END]\n"})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "no valid records")
	assert.Empty(t, creator.payloads)
}

func TestSubmit_WhitespaceTextIsUnprocessable(t *testing.T) {
	r, creator := setupRouter(t)

	w := postJSON(t, r, "/batches", map[string]any{"text": "   \n  "})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "no valid records")
	assert.Empty(t, creator.payloads)
}

func TestSubmit_BadRequests(t *testing.T) {
	testCases := []struct {
		name string
		body any
	}{
		{name: "missing text", body: map[string]any{"format": "tagged"}},
		{name: "empty text", body: map[string]any{"text": ""}},
		{name: "unknown format", body: map[string]any{"text": "[EN] x", "format": "docx"}},
		{name: "not an object", body: []string{"x"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := setupRouter(t)
			w := postJSON(t, r, "/batches", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func multipartRequest(t *testing.T, path, filename, content string, parts map[string][]byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for field, data := range parts {
		part, partErr := mw.CreateFormFile(field, field+".png")
		require.NoError(t, partErr)
		_, partErr = part.Write(data)
		require.NoError(t, partErr)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSubmit_MultipartCSVWithMedia(t *testing.T) {
	r, creator := setupRouter(t)

	csvText := "english_content,chinese_translation,tags,image_prompt,scheduled_time\n" +
		"First,第一,#a,,\n" +
		"Second,第二,#b,,2024-01-15T10:00:00Z\n"
	req := multipartRequest(t, "/batches", "posts.csv", csvText, map[string][]byte{"media_2": pngHeader})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result ingest.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Outcomes, 2)
	assert.Nil(t, result.Outcomes[0].Source.AttachedMedia)
	require.NotNil(t, result.Outcomes[1].Source.AttachedMedia)
	assert.Equal(t, "media/media_2.png", result.Outcomes[1].Source.AttachedMedia.DurableID)
	assert.Len(t, creator.payloads, 2)
}

func TestSubmit_MultipartMediaErrors(t *testing.T) {
	testCases := []struct {
		name  string
		field string
	}{
		{name: "zero record number", field: "media_0"},
		{name: "not a number", field: "media_x"},
		{name: "past the last record", field: "media_5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, creator := setupRouter(t)
			req := multipartRequest(t, "/batches", "posts.txt", "[EN] one\n[END]\n", map[string][]byte{tc.field: pngHeader})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, creator.payloads)
		})
	}
}

func TestPreview(t *testing.T) {
	r, creator := setupRouter(t)

	w := postJSON(t, r, "/batches/preview", map[string]any{
		"text": "[EN] a\n[TIME] 2024-01-15T10:00:00Z\n[END]\n[EN] b\n[END]\n",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count   int `json:"count"`
		Preview struct {
			Records []struct {
				Schedule struct {
					Status string `json:"status"`
				} `json:"schedule"`
			} `json:"records"`
		} `json:"preview"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "scheduled", body.Preview.Records[0].Schedule.Status)
	assert.Equal(t, "draft", body.Preview.Records[1].Schedule.Status)
	assert.Empty(t, creator.payloads)
}

func TestTemplate(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/batches/template", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, strings.HasPrefix(w.Body.String(), "english_content,chinese_translation,tags,image_prompt,scheduled_time\n"))
}
