package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/putrawijaya/trackdev_be/internal/models"
	"github.com/putrawijaya/trackdev_be/internal/utils"
)

type StudentHandler struct {
	DB        *gorm.DB
	UploadDir string
}

func NewStudentHandler(db *gorm.DB, uploadDir string) *StudentHandler {
	return &StudentHandler{DB: db, UploadDir: uploadDir}
}

type CreateStudentReq struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Create makes a student account owned by the calling developer.
func (h *StudentHandler) Create(c *fiber.Ctx) error {
	dev, err := currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized",
		})
	}

	var req CreateStudentReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid body",
		})
	}

	name := strings.TrimSpace(req.Name)
	username := strings.ToLower(strings.TrimSpace(req.Username))
	password := strings.TrimSpace(req.Password)

	if name == "" || username == "" || password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Name, username and password are required",
		})
	}

	var existing models.User
	if err := h.DB.Where("username = ?", username).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Username already taken",
		})
	} else if err != gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Server error",
		})
	}

	pw, err := utils.HashPassword(password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to process password",
		})
	}

	student := models.User{
		Name:                name,
		Username:            username,
		Password:            pw,
		Role:                models.RoleStudent,
		AssignedDeveloperID: &dev.ID,
	}
	if err := h.DB.Create(&student).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create student",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Student created",
		"data":    student,
	})
}

// List returns only students owned by the caller; the scoping lives in the
// query so other developers' students never reach the response.
func (h *StudentHandler) List(c *fiber.Ctx) error {
	dev, err := currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized",
		})
	}

	var students []models.User
	if err := h.DB.
		Where("role = ? AND assigned_developer_id = ?", models.RoleStudent, dev.ID).
		Order("created_at DESC").
		Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch students",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    students,
	})
}

// Detail returns a student and their projects. Authorization here is role
// only: any developer can fetch any student by id. Known gap, kept until the
// intended trust model is confirmed; see the tests that pin it.
func (h *StudentHandler) Detail(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid student id",
		})
	}

	var student models.User
	if err := h.DB.First(&student, "id = ? AND role = ?", id, models.RoleStudent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Student not found",
		})
	}

	var projects []models.Project
	if err := h.DB.Where("student_id = ?", student.ID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch projects",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"student":  student,
			"projects": projects,
		},
	})
}

// UpdateStudentReq distinguishes absent fields from present ones: an absent
// field leaves the stored value alone. Identity fields use pointers and
// reject present-but-empty. Path fields are raw so that both an empty string
// and an explicit null clear the stored path.
type UpdateStudentReq struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Password *string `json:"password"`

	DocumentPath json.RawMessage `json:"document_path"`
	PDFPath      json.RawMessage `json:"pdf_path"`
	ZipPath      json.RawMessage `json:"zip_path"`
	VideoPath    json.RawMessage `json:"video_path"`
}

// pathFieldValue interprets a supplied path field. JSON null, "" and
// anything unreadable all mean "clear".
func pathFieldValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (h *StudentHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid student id",
		})
	}

	var req UpdateStudentReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid body",
		})
	}

	var student models.User
	if err := h.DB.First(&student, "id = ? AND role = ?", id, models.RoleStudent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Student not found",
		})
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		student.Name = strings.TrimSpace(*req.Name)
	}
	if req.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*req.Username))
		if username != "" && username != student.Username {
			var existing models.User
			if err := h.DB.Where("username = ?", username).First(&existing).Error; err == nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": "Username already taken",
				})
			}
			student.Username = username
		}
	}
	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		pw, err := utils.HashPassword(strings.TrimSpace(*req.Password))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to process password",
			})
		}
		student.Password = pw
	}

	// Path fields: present-but-empty and explicit null both clear.
	if len(req.DocumentPath) > 0 {
		student.DocumentPath = pathFieldValue(req.DocumentPath)
	}
	if len(req.PDFPath) > 0 {
		student.PDFPath = pathFieldValue(req.PDFPath)
	}
	if len(req.ZipPath) > 0 {
		student.ZipPath = pathFieldValue(req.ZipPath)
	}
	if len(req.VideoPath) > 0 {
		student.VideoPath = pathFieldValue(req.VideoPath)
	}

	if err := h.DB.Save(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update student",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Student updated",
		"data":    student,
	})
}

// Accepted upload extensions. The decision is extension-only; the part's
// declared content type is logged but never trusted or enforced.
var allowedUploadExts = map[string]bool{
	".zip": true,
	".pdf": true,
	".mp4": true,
	".mov": true,
	".avi": true,
	".mkv": true,
}

// Upload stores a single multipart file flat under the upload dir as
// <receipt-timestamp>-<original-filename> and records its public path on the
// student record, routed by extension.
func (h *StudentHandler) Upload(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid student id",
		})
	}

	var student models.User
	if err := h.DB.First(&student, "id = ? AND role = ?", id, models.RoleStudent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Student not found",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "File is required",
		})
	}
	if file.Size <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid file size",
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType := file.Header.Get("Content-Type")
	log.Printf("upload: student=%s file=%s ext=%s content-type=%s", id, file.Filename, ext, contentType)

	if !allowedUploadExts[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "File type not supported",
		})
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create upload directory",
		})
	}

	filename := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), file.Filename)
	savePath := filepath.Join(h.UploadDir, filename)

	if err := c.SaveFile(file, savePath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to save file",
		})
	}

	publicPath := "/uploads/" + filename

	switch ext {
	case ".pdf":
		student.PDFPath = publicPath
	case ".zip":
		student.ZipPath = publicPath
	default:
		student.VideoPath = publicPath
	}

	if err := h.DB.Save(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update student",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File uploaded",
		"data": fiber.Map{
			"path":    publicPath,
			"student": student,
		},
	})
}
