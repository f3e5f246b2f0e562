package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ContactStatus string

const (
	ContactNew     ContactStatus = "new"
	ContactRead    ContactStatus = "read"
	ContactReplied ContactStatus = "replied"
)

func (s ContactStatus) Valid() bool {
	switch s {
	case ContactNew, ContactRead, ContactReplied:
		return true
	}
	return false
}

type ContactMessage struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string        `gorm:"size:140" json:"name"`
	Email     string        `gorm:"size:140" json:"email"`
	Phone     string        `gorm:"size:50" json:"phone"`
	Subject   string        `gorm:"size:180" json:"subject"`
	Message   string        `gorm:"type:text" json:"message"`
	Status    ContactStatus `gorm:"type:varchar(20);index;default:new" json:"status"`
	Reply     string        `gorm:"type:text" json:"reply,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type ContactRepo interface {
	Save(ctx context.Context, m *ContactMessage) error
	FindByID(ctx context.Context, id uuid.UUID) (*ContactMessage, error)
	List(ctx context.Context, status ContactStatus) ([]ContactMessage, error)
}
