package movtype

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockRepo struct {
	types map[string]*MovementType
}

func newMockRepo() *mockRepo {
	return &mockRepo{types: make(map[string]*MovementType)}
}

func (m *mockRepo) Create(_ context.Context, t *MovementType) error {
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	m.types[t.Code] = t
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*MovementType, error) {
	for _, t := range m.types {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*MovementType, error) {
	t, ok := m.types[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

func (m *mockRepo) Update(_ context.Context, t *MovementType) error {
	m.types[t.Code] = t
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	for code, t := range m.types {
		if t.ID == id {
			delete(m.types, code)
		}
	}
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*MovementType, int, error) {
	var result []*MovementType
	for _, t := range m.types {
		result = append(result, t)
	}
	return result, len(result), nil
}

func TestCreateMovementType(t *testing.T) {
	svc := NewService(newMockRepo())
	mt := &MovementType{Code: "CHG", Description: "Charge", Sign: SignCharge}
	if err := svc.Create(context.Background(), mt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mt.IsCharge() || mt.IsDischarge() {
		t.Error("expected a charging type")
	}
}

func TestCreateMovementTypeRejectsBadSign(t *testing.T) {
	svc := NewService(newMockRepo())
	err := svc.Create(context.Background(), &MovementType{Code: "X", Sign: "?"})
	if err == nil {
		t.Error("expected error for invalid sign")
	}
}

func TestGetByCodeNotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.GetByCode(context.Background(), "NOPE")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
