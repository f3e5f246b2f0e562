package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glamourpk/glamour/internal/domain"
)

type fakeContactRepo struct {
	byID map[uuid.UUID]*domain.ContactMessage
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{byID: map[uuid.UUID]*domain.ContactMessage{}}
}

func (f *fakeContactRepo) Save(_ context.Context, m *domain.ContactMessage) error {
	cp := *m
	f.byID[m.ID] = &cp
	return nil
}

func (f *fakeContactRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.ContactMessage, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeContactRepo) List(_ context.Context, status domain.ContactStatus) ([]domain.ContactMessage, error) {
	out := []domain.ContactMessage{}
	for _, m := range f.byID {
		if status != "" && m.Status != status {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func contactFixture(t *testing.T) (*ContactUC, *domain.ContactMessage) {
	t.Helper()
	uc := &ContactUC{Messages: newFakeContactRepo()}
	m := &domain.ContactMessage{Name: "Sana", Email: "sana@example.com", Message: "Do you ship to Karachi?"}
	require.NoError(t, uc.Submit(context.Background(), m))
	return uc, m
}

func TestContactSubmitValidation(t *testing.T) {
	uc := &ContactUC{Messages: newFakeContactRepo()}
	ctx := context.Background()

	assert.True(t, domain.IsValidation(uc.Submit(ctx, &domain.ContactMessage{Email: "a@b.pk", Message: "hi"})), "missing name")
	assert.True(t, domain.IsValidation(uc.Submit(ctx, &domain.ContactMessage{Name: "Sana", Email: "nope", Message: "hi"})), "bad email")
	assert.True(t, domain.IsValidation(uc.Submit(ctx, &domain.ContactMessage{Name: "Sana", Email: "a@b.pk"})), "missing message")
}

func TestContactUpdateStatus(t *testing.T) {
	uc, m := contactFixture(t)

	got, err := uc.Update(context.Background(), m.ID, domain.ContactRead, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ContactRead, got.Status)

	_, err = uc.Update(context.Background(), m.ID, "archived", nil)
	assert.True(t, domain.IsValidation(err))

	_, err = uc.Update(context.Background(), m.ID, "", nil)
	assert.True(t, domain.IsValidation(err), "empty update")
}

func TestContactUpdateReply(t *testing.T) {
	uc, m := contactFixture(t)

	reply := "Yes, nationwide delivery."
	got, err := uc.Update(context.Background(), m.ID, "", &reply)
	require.NoError(t, err)
	assert.Equal(t, reply, got.Reply)
	assert.Equal(t, domain.ContactReplied, got.Status)

	// an explicit status alongside the reply wins
	reply2 := "Follow-up sent."
	got, err = uc.Update(context.Background(), m.ID, domain.ContactRead, &reply2)
	require.NoError(t, err)
	assert.Equal(t, reply2, got.Reply)
	assert.Equal(t, domain.ContactRead, got.Status)
}
