package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/putrawijaya/trackdev_be/internal/models"
	"github.com/putrawijaya/trackdev_be/internal/realtime"
	"github.com/putrawijaya/trackdev_be/internal/utils"
)

type ProjectHandler struct {
	DB  *gorm.DB
	Bus *realtime.EventBus
}

func NewProjectHandler(db *gorm.DB, bus *realtime.EventBus) *ProjectHandler {
	return &ProjectHandler{DB: db, Bus: bus}
}

// AssignProjectReq carries amount as raw JSON: clients send numbers, numeric
// strings or null in that field and all of them must be accepted.
type AssignProjectReq struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	StudentID      string          `json:"student_id"`
	SubmissionDate string          `json:"submission_date"`
	Frontend       string          `json:"frontend"`
	Backend        string          `json:"backend"`
	Database       string          `json:"database"`
	Amount         json.RawMessage `json:"amount"`
}

func parseSubmissionDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Assign creates a project for a student with status Pending. The student id
// is taken on faith: neither existence nor ownership by the caller is
// verified here. Known gap, pinned by tests rather than silently fixed.
func (h *ProjectHandler) Assign(c *fiber.Ctx) error {
	var req AssignProjectReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid body",
		})
	}

	if req.Title == "" || req.StudentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Title and student_id are required",
		})
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid student_id",
		})
	}

	project := models.Project{
		Title:          req.Title,
		Description:    req.Description,
		StudentID:      studentID,
		SubmissionDate: parseSubmissionDate(req.SubmissionDate),
		Frontend:       req.Frontend,
		Backend:        req.Backend,
		Database:       req.Database,
		Amount:         utils.CoerceAmountJSON(req.Amount),
		Status:         models.StatusPending,
	}
	if err := h.DB.Create(&project).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create project",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Project assigned",
		"data":    project,
	})
}

// MyProjects lists the caller's own projects (student view).
func (h *ProjectHandler) MyProjects(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized",
		})
	}

	var projects []models.Project
	if err := h.DB.Where("student_id = ?", user.ID).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch projects",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    projects,
	})
}

// UpdateProjectReq: string fields update on non-empty, amount updates on
// presence. The asymmetry is inherited behavior — amount 0 is settable while
// title "" is a no-op — and is pinned by tests.
type UpdateProjectReq struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Status         string          `json:"status"`
	Frontend       string          `json:"frontend"`
	Backend        string          `json:"backend"`
	Database       string          `json:"database"`
	SubmissionDate string          `json:"submission_date"`
	Amount         json.RawMessage `json:"amount"`
}

func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid project id",
		})
	}

	var req UpdateProjectReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid body",
		})
	}

	var project models.Project
	if err := h.DB.First(&project, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Project not found",
		})
	}

	oldStatus := project.Status

	if req.Title != "" {
		project.Title = req.Title
	}
	if req.Description != "" {
		project.Description = req.Description
	}
	if req.Status != "" {
		status := models.ProjectStatus(req.Status)
		if !status.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid project status",
			})
		}
		project.Status = status
	}
	if req.Frontend != "" {
		project.Frontend = req.Frontend
	}
	if req.Backend != "" {
		project.Backend = req.Backend
	}
	if req.Database != "" {
		project.Database = req.Database
	}
	if req.SubmissionDate != "" {
		project.SubmissionDate = parseSubmissionDate(req.SubmissionDate)
	}
	if len(req.Amount) > 0 {
		project.Amount = utils.CoerceAmountJSON(req.Amount)
	}

	if err := h.DB.Save(&project).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update project",
		})
	}

	if project.Status != oldStatus {
		h.notifyStatusChange(c, &project, oldStatus)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Project updated",
		"data":    project,
	})
}

// notifyStatusChange pushes a status event to the developer owning the
// project's student. Best effort only.
func (h *ProjectHandler) notifyStatusChange(c *fiber.Ctx, project *models.Project, oldStatus models.ProjectStatus) {
	if h.Bus == nil {
		return
	}

	var student models.User
	if err := h.DB.First(&student, "id = ?", project.StudentID).Error; err != nil {
		log.Printf("status event: student %s not found: %v", project.StudentID, err)
		return
	}
	if student.AssignedDeveloperID == nil {
		return
	}

	h.Bus.PublishStatus(c.Context(), *student.AssignedDeveloperID, realtime.StatusEvent{
		ProjectID: project.ID,
		Title:     project.Title,
		StudentID: project.StudentID,
		OldStatus: string(oldStatus),
		NewStatus: string(project.Status),
	})
}

// SaveBill replaces the invoice snapshot wholesale but carries the previous
// is_sent forward: a draft save can never un-send an invoice.
func (h *ProjectHandler) SaveBill(c *fiber.Ctx) error {
	return h.saveInvoice(c, false)
}

// SendBill replaces the snapshot and forces is_sent true, whatever the
// request claimed.
func (h *ProjectHandler) SendBill(c *fiber.Ctx) error {
	return h.saveInvoice(c, true)
}

// InvoiceReq mirrors the invoice snapshot but keeps amount raw: invoice
// bodies are as loosely typed as project ones, so "250" and null must be
// accepted, not rejected.
type InvoiceReq struct {
	InvoiceNumber  string          `json:"invoice_number"`
	InvoiceDate    string          `json:"invoice_date"`
	CompanyName    string          `json:"company_name"`
	CompanyAddress string          `json:"company_address"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Amount         json.RawMessage `json:"amount"`
	PaymentStatus  string          `json:"payment_status"`
	PaymentMethod  string          `json:"payment_method"`
	Signatory      string          `json:"signatory"`
}

func (h *ProjectHandler) saveInvoice(c *fiber.Ctx, send bool) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid project id",
		})
	}

	var req InvoiceReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid body",
		})
	}

	inv := models.InvoiceDetails{
		InvoiceNumber:  req.InvoiceNumber,
		InvoiceDate:    req.InvoiceDate,
		CompanyName:    req.CompanyName,
		CompanyAddress: req.CompanyAddress,
		Title:          req.Title,
		Description:    req.Description,
		Amount:         utils.CoerceAmountJSON(req.Amount),
		PaymentStatus:  req.PaymentStatus,
		PaymentMethod:  req.PaymentMethod,
		Signatory:      req.Signatory,
	}

	var project models.Project
	if err := h.DB.First(&project, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Project not found",
		})
	}

	if send {
		inv.IsSent = true
	} else {
		prev, err := project.Invoice()
		if err != nil {
			log.Printf("invoice: unreadable previous snapshot on project %s: %v", project.ID, err)
		}
		inv.IsSent = prev != nil && prev.IsSent
	}
	if inv.PaymentStatus == "" {
		inv.PaymentStatus = "Pending"
	}

	if err := project.SetInvoice(inv); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to encode invoice",
		})
	}

	if err := h.DB.Save(&project).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update project",
		})
	}

	msg := "Invoice saved"
	if send {
		msg = "Invoice sent"
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": msg,
		"data":    project,
	})
}
