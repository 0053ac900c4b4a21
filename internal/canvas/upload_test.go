package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// submissionServer fakes the API host plus the independent upload target
// and counts how far the protocol got.
type submissionServer struct {
	api    *httptest.Server
	upload *httptest.Server

	ticketStatus   int
	ticketBody     string // when empty, a valid ticket pointing at upload
	uploadStatus   int
	uploadBody     string
	registerStatus int

	uploadCalls   atomic.Int64
	registerCalls atomic.Int64

	lastTicketForm   map[string]string
	lastUploadAuth   string
	lastUploadFields map[string]string
	lastUploadFile   string
	lastRegisterBody map[string]any
}

func newSubmissionServer(t *testing.T) *submissionServer {
	t.Helper()
	s := &submissionServer{
		ticketStatus:   http.StatusOK,
		uploadStatus:   http.StatusCreated,
		uploadBody:     `{"id": 55}`,
		registerStatus: http.StatusCreated,
	}

	s.upload = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.uploadCalls.Add(1)
		s.lastUploadAuth = r.Header.Get("Authorization")

		assert.NoError(t, r.ParseMultipartForm(1<<20))
		s.lastUploadFields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			s.lastUploadFields[k] = v[0]
		}
		if files := r.MultipartForm.File["file"]; len(files) > 0 {
			s.lastUploadFile = files[0].Filename
		}

		w.WriteHeader(s.uploadStatus)
		w.Write([]byte(s.uploadBody))
	}))
	t.Cleanup(s.upload.Close)

	s.api = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/courses/1/assignments/9/submissions/self/files":
			assert.NoError(t, r.ParseForm())
			s.lastTicketForm = map[string]string{}
			for k, v := range r.PostForm {
				s.lastTicketForm[k] = v[0]
			}
			w.WriteHeader(s.ticketStatus)
			if s.ticketBody != "" {
				w.Write([]byte(s.ticketBody))
				return
			}
			fmt.Fprintf(w, `{"upload_url": %q, "upload_params": {"key": "tmp/essay", "policy": "signed"}}`,
				s.upload.URL)
		case "/courses/1/assignments/9/submissions":
			s.registerCalls.Add(1)
			var payload map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			s.lastRegisterBody = payload
			w.WriteHeader(s.registerStatus)
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(s.api.Close)

	return s
}

func TestSubmitFile_Success(t *testing.T) {
	s := newSubmissionServer(t)
	path := writeTempFile(t, "essay.txt", "hello canvas")

	c := New(s.api.URL, "abc", nil)
	result := c.SubmitFile(context.Background(), 1, 9, path)

	require.True(t, result.Success, "result: %+v", result)
	assert.Empty(t, result.Stage)
	assert.NotEmpty(t, result.Message)

	// Stage 1 carried the file metadata.
	assert.Equal(t, "essay.txt", s.lastTicketForm["name"])
	assert.Equal(t, "12", s.lastTicketForm["size"])
	assert.Contains(t, s.lastTicketForm["content_type"], "text/plain")

	// Stage 2 hit the independent endpoint with the ticket params, the
	// file part, and no bearer header.
	assert.Equal(t, int64(1), s.uploadCalls.Load())
	assert.Empty(t, s.lastUploadAuth)
	assert.Equal(t, "tmp/essay", s.lastUploadFields["key"])
	assert.Equal(t, "signed", s.lastUploadFields["policy"])
	assert.Equal(t, "essay.txt", s.lastUploadFile)

	// Stage 3 registered an online_upload with the returned file id.
	assert.Equal(t, int64(1), s.registerCalls.Load())
	submission := s.lastRegisterBody["submission"].(map[string]any)
	assert.Equal(t, "online_upload", submission["submission_type"])
	assert.Equal(t, []any{float64(55)}, submission["file_ids"])
}

func TestSubmitFile_TicketStatusFailure(t *testing.T) {
	s := newSubmissionServer(t)
	s.ticketStatus = http.StatusForbidden
	path := writeTempFile(t, "essay.txt", "x")

	c := New(s.api.URL, "abc", nil)
	result := c.SubmitFile(context.Background(), 1, 9, path)

	require.False(t, result.Success)
	assert.Equal(t, StageTicket, result.Stage)
	assert.Contains(t, result.Message, "status 403")
	assert.Equal(t, int64(0), s.uploadCalls.Load(), "stage 2 must not run after a ticket failure")
	assert.Equal(t, int64(0), s.registerCalls.Load())
}

func TestSubmitFile_TicketMissingUploadURL(t *testing.T) {
	s := newSubmissionServer(t)
	s.ticketBody = `{"upload_params": {}}`
	path := writeTempFile(t, "essay.txt", "x")

	c := New(s.api.URL, "abc", nil)
	result := c.SubmitFile(context.Background(), 1, 9, path)

	require.False(t, result.Success)
	assert.Equal(t, StageTicket, result.Stage)
	assert.Contains(t, result.Message, "upload URL not found")
	assert.Equal(t, int64(0), s.uploadCalls.Load(), "stage 2 must not run without an upload URL")
}

func TestSubmitFile_UploadStatusFailure(t *testing.T) {
	s := newSubmissionServer(t)
	s.uploadStatus = http.StatusBadRequest
	s.uploadBody = `{"message": "bad signature"}`
	path := writeTempFile(t, "essay.txt", "x")

	c := New(s.api.URL, "abc", nil)
	result := c.SubmitFile(context.Background(), 1, 9, path)

	require.False(t, result.Success)
	assert.Equal(t, StageUpload, result.Stage)
	assert.Contains(t, result.Message, "status 400")
	assert.Contains(t, result.Message, "bad signature")
	assert.Equal(t, int64(0), s.registerCalls.Load(), "stage 3 must not run after an upload failure")
}

func TestSubmitFile_UploadMissingFileID(t *testing.T) {
	s := newSubmissionServer(t)
	s.uploadBody = `{"ok": true}`
	path := writeTempFile(t, "essay.txt", "x")

	c := New(s.api.URL, "abc", nil)
	result := c.SubmitFile(context.Background(), 1, 9, path)

	require.False(t, result.Success)
	assert.Equal(t, StageUpload, result.Stage)
	assert.Contains(t, result.Message, "file ID not found")
	assert.Equal(t, int64(0), s.registerCalls.Load())
}

func TestSubmitFile_RegisterFailure(t *testing.T) {
	s := newSubmissionServer(t)
	s.registerStatus = http.StatusBadRequest
	path := writeTempFile(t, "essay.txt", "x")

	c := New(s.api.URL, "abc", nil)
	result := c.SubmitFile(context.Background(), 1, 9, path)

	require.False(t, result.Success)
	assert.Equal(t, StageRegister, result.Stage)
	assert.Contains(t, result.Message, "status 400")
	assert.Equal(t, int64(1), s.uploadCalls.Load())
}

func TestSubmitFile_MissingLocalFile(t *testing.T) {
	s := newSubmissionServer(t)

	c := New(s.api.URL, "abc", nil)
	result := c.SubmitFile(context.Background(), 1, 9, filepath.Join(t.TempDir(), "absent.txt"))

	require.False(t, result.Success)
	assert.Equal(t, StageTicket, result.Stage)
	assert.Equal(t, int64(0), s.uploadCalls.Load())
}

func TestContentTypeFor(t *testing.T) {
	assert.Contains(t, ContentTypeFor("report.pdf"), "application/pdf")
	assert.Contains(t, ContentTypeFor("notes.txt"), "text/plain")
	assert.Equal(t, "application/octet-stream", ContentTypeFor("mystery.zzz9"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("no-extension"))
}
