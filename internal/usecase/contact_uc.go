package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/glamourpk/glamour/internal/domain"
)

type ContactUC struct {
	Messages domain.ContactRepo
}

func (uc *ContactUC) Submit(ctx context.Context, m *domain.ContactMessage) error {
	if strings.TrimSpace(m.Name) == "" {
		return domain.Invalid("name", "required")
	}
	if strings.TrimSpace(m.Email) == "" || !strings.Contains(m.Email, "@") {
		return domain.Invalid("email", "valid email required")
	}
	if strings.TrimSpace(m.Message) == "" {
		return domain.Invalid("message", "required")
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.Status = domain.ContactNew
	return uc.Messages.Save(ctx, m)
}

func (uc *ContactUC) List(ctx context.Context, status domain.ContactStatus) ([]domain.ContactMessage, error) {
	if status != "" && !status.Valid() {
		return nil, domain.Invalid("status", "must be new, read or replied")
	}
	return uc.Messages.List(ctx, status)
}

// Update applies an admin edit: a status change, a reply note, or both. A
// reply with no explicit status moves the message to replied.
func (uc *ContactUC) Update(ctx context.Context, id uuid.UUID, status domain.ContactStatus, reply *string) (*domain.ContactMessage, error) {
	if status != "" && !status.Valid() {
		return nil, domain.Invalid("status", "must be new, read or replied")
	}
	if status == "" && reply == nil {
		return nil, domain.Invalid("status", "nothing to update")
	}
	m, err := uc.Messages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reply != nil {
		m.Reply = strings.TrimSpace(*reply)
		if status == "" && m.Reply != "" {
			status = domain.ContactReplied
		}
	}
	if status != "" {
		m.Status = status
	}
	if err := uc.Messages.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
