package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/putrawijaya/trackdev_be/internal/config"
	"github.com/putrawijaya/trackdev_be/internal/models"
	"github.com/putrawijaya/trackdev_be/internal/realtime"
)

type testEnv struct {
	App       *fiber.App
	DB        *gorm.DB
	Hub       *realtime.Hub
	UploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.Project{}))

	hub := realtime.NewHub()
	go hub.Run()

	uploadDir := t.TempDir()
	cfg := config.Config{
		AppPort:       "0",
		JWTSecret:     "test-secret",
		JWTExpiresMin: 60,
		UploadDir:     uploadDir,
		CORSOrigins:   "http://localhost:3000",
	}
	bus := realtime.NewEventBus(hub, nil)

	return &testEnv{
		App:       New(cfg, gdb, hub, bus),
		DB:        gdb,
		Hub:       hub,
		UploadDir: uploadDir,
	}
}

// doJSON fires a request at the app and decodes the envelope.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return resp.StatusCode, out
}

// registerDeveloper creates a developer through the public endpoint and
// returns the minted token and user id.
func (e *testEnv) registerDeveloper(t *testing.T, name, username string) (token, id string) {
	t.Helper()

	code, body := e.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     name,
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, code, "register %s: %v", username, body)

	data := body["data"].(map[string]interface{})
	token = data["token"].(string)
	id = data["user"].(map[string]interface{})["id"].(string)
	return token, id
}

// createStudent creates a student owned by the caller and returns its id.
func (e *testEnv) createStudent(t *testing.T, devToken, name, username string) string {
	t.Helper()

	code, body := e.doJSON(t, http.MethodPost, "/api/students/", devToken, map[string]interface{}{
		"name":     name,
		"username": username,
		"password": "studentpass1",
	})
	require.Equal(t, http.StatusCreated, code, "create student %s: %v", username, body)
	return body["data"].(map[string]interface{})["id"].(string)
}

// loginAs returns a token for an existing account.
func (e *testEnv) loginAs(t *testing.T, username, password string) string {
	t.Helper()

	code, body := e.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, code, "login %s: %v", username, body)
	return body["data"].(map[string]interface{})["token"].(string)
}

// assignProject creates a project for studentID and returns the project id.
func (e *testEnv) assignProject(t *testing.T, devToken, studentID string, amount interface{}) string {
	t.Helper()

	code, body := e.doJSON(t, http.MethodPost, "/api/students/assign-project", devToken, map[string]interface{}{
		"title":           "Portfolio site",
		"description":     "three pages",
		"student_id":      studentID,
		"submission_date": "2026-09-30",
		"frontend":        "React",
		"backend":         "Go",
		"database":        "Postgres",
		"amount":          amount,
	})
	require.Equal(t, http.StatusCreated, code, "assign project: %v", body)
	return body["data"].(map[string]interface{})["id"].(string)
}
