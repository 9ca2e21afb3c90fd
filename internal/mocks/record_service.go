package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/service"
)

// MockRecordService implements service.RecordService with function fields.
// Unset functions return Err.
type MockRecordService struct {
	CreateFn    func(ctx context.Context, ownerID uuid.UUID, input service.RecordInput) (*domain.Record, error)
	ListOwnedFn func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Record, error)
	UpdateFn    func(ctx context.Context, ownerID, recordID uuid.UUID, patch domain.RecordPatch) (*domain.Record, error)
	DeleteFn    func(ctx context.Context, ownerID, recordID uuid.UUID) (*domain.Record, error)

	Err error
}

var _ service.RecordService = (*MockRecordService)(nil)

// Create implements service.RecordService.
func (m *MockRecordService) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	input service.RecordInput,
) (*domain.Record, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, ownerID, input)
	}
	return nil, m.Err
}

// ListOwned implements service.RecordService.
func (m *MockRecordService) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]*domain.Record, error) {
	if m.ListOwnedFn != nil {
		return m.ListOwnedFn(ctx, ownerID)
	}
	return nil, m.Err
}

// Update implements service.RecordService.
func (m *MockRecordService) Update(
	ctx context.Context,
	ownerID, recordID uuid.UUID,
	patch domain.RecordPatch,
) (*domain.Record, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, ownerID, recordID, patch)
	}
	return nil, m.Err
}

// Delete implements service.RecordService.
func (m *MockRecordService) Delete(ctx context.Context, ownerID, recordID uuid.UUID) (*domain.Record, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, ownerID, recordID)
	}
	return nil, m.Err
}
