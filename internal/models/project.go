package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	StatusPending      ProjectStatus = "Pending"
	StatusProcess      ProjectStatus = "Process"
	StatusStart        ProjectStatus = "Start"
	StatusBackendWork  ProjectStatus = "Backend Work"
	StatusFrontendWork ProjectStatus = "Frontend Work"
	StatusDatabaseWork ProjectStatus = "Database Work"
	StatusCompleted    ProjectStatus = "Completed"
)

// Valid reports whether s is one of the seven known statuses. Transitions
// between statuses are unrestricted; only the value set is closed.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcess, StatusStart, StatusBackendWork,
		StatusFrontendWork, StatusDatabaseWork, StatusCompleted:
		return true
	}
	return false
}

// InvoiceDetails is the billing snapshot embedded in a project. It is
// replaced wholesale on every draft save or send; IsSent is the only field
// with its own lifecycle (false until the first send, true forever after).
type InvoiceDetails struct {
	InvoiceNumber  string  `json:"invoice_number"`
	InvoiceDate    string  `json:"invoice_date"`
	CompanyName    string  `json:"company_name"`
	CompanyAddress string  `json:"company_address"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Amount         float64 `json:"amount"`
	PaymentStatus  string  `json:"payment_status"`
	PaymentMethod  string  `json:"payment_method"`
	Signatory      string  `json:"signatory"`
	IsSent         bool    `json:"is_sent"`
}

type Project struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title          string    `gorm:"not null" json:"title"`
	Description    string    `json:"description"`
	SubmissionDate time.Time `json:"submission_date"`

	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`

	Frontend string `json:"frontend"`
	Backend  string `json:"backend"`
	Database string `json:"database"`

	Amount float64       `json:"amount"`
	Status ProjectStatus `gorm:"type:varchar(30);default:Pending" json:"status"`

	InvoiceDetails datatypes.JSON `json:"invoice_details,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student *User `gorm:"foreignKey:StudentID;references:ID" json:"student,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Invoice decodes the stored snapshot, or returns nil if no invoice has
// been drafted yet.
func (p *Project) Invoice() (*InvoiceDetails, error) {
	if len(p.InvoiceDetails) == 0 {
		return nil, nil
	}
	var inv InvoiceDetails
	if err := json.Unmarshal(p.InvoiceDetails, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (p *Project) SetInvoice(inv InvoiceDetails) error {
	b, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	p.InvoiceDetails = datatypes.JSON(b)
	return nil
}
