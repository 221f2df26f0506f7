package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleDeveloper Role = "developer"
	RoleStudent   Role = "student"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"not null" json:"name"`
	Username string    `gorm:"uniqueIndex;not null" json:"username"`

	Password string `gorm:"not null" json:"-"`
	Role     Role   `gorm:"type:varchar(20);not null;index" json:"role"`

	// Set only on students, points to the developer who owns the account.
	AssignedDeveloperID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_developer,omitempty"`

	DocumentPath string `json:"document_path"`
	PDFPath      string `json:"pdf_path"`
	ZipPath      string `json:"zip_path"`
	VideoPath    string `json:"video_path"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AssignedDeveloper *User `gorm:"foreignKey:AssignedDeveloperID;references:ID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
