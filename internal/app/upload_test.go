package app

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) doUpload(t *testing.T, token, studentID, filename string, content []byte) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/students/"+studentID+"/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestUploadRejectsUnknownExtension(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerDeveloper(t, "Dewi", "dewi")
	studentID := env.createStudent(t, token, "Sari", "sari")

	code, body := env.doUpload(t, token, studentID, "report.exe", []byte("MZ"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["message"], "not supported")
}

func TestUploadRoutesByExtension(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerDeveloper(t, "Dewi", "dewi")
	studentID := env.createStudent(t, token, "Sari", "sari")

	code, body := env.doUpload(t, token, studentID, "report.pdf", []byte("%PDF-1.4"))
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	student := data["student"].(map[string]interface{})

	pdfPath := student["pdf_path"].(string)
	assert.True(t, strings.HasPrefix(pdfPath, "/uploads/"), pdfPath)
	assert.True(t, strings.HasSuffix(pdfPath, "-report.pdf"), pdfPath)

	// the file really lands flat in the upload dir
	onDisk := filepath.Join(env.UploadDir, strings.TrimPrefix(pdfPath, "/uploads/"))
	contents, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(contents))

	code, body = env.doUpload(t, token, studentID, "clip.mp4", []byte("vid"))
	require.Equal(t, http.StatusOK, code)
	student = body["data"].(map[string]interface{})["student"].(map[string]interface{})
	assert.True(t, strings.HasSuffix(student["video_path"].(string), "-clip.mp4"))
	assert.True(t, strings.HasSuffix(student["pdf_path"].(string), "-report.pdf"), "pdf slot untouched by video upload")

	code, body = env.doUpload(t, token, studentID, "sources.zip", []byte("PK"))
	require.Equal(t, http.StatusOK, code)
	student = body["data"].(map[string]interface{})["student"].(map[string]interface{})
	assert.True(t, strings.HasSuffix(student["zip_path"].(string), "-sources.zip"))
}

func TestUploadUnknownStudent(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerDeveloper(t, "Dewi", "dewi")

	code, _ := env.doUpload(t, token, "2c9f4cbe-31b0-41c1-a2c1-0e2cf0c4f7b2", "report.pdf", []byte("%PDF"))
	assert.Equal(t, http.StatusNotFound, code)
}
