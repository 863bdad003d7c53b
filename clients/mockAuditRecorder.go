package clients

import (
	"context"
	"sync"

	"github.com/festivo-org/concierge/models"
)

type MockAuditRecorder struct {
	mu      sync.Mutex
	records []*models.AuditRecord
}

func NewMockAuditRecorder() *MockAuditRecorder {
	return &MockAuditRecorder{}
}

func (r *MockAuditRecorder) Record(ctx context.Context, record *models.AuditRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}

func (r *MockAuditRecorder) Records() []*models.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.AuditRecord{}, r.records...)
}

func (r *MockAuditRecorder) LastAction() models.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) == 0 {
		return ""
	}
	return r.records[len(r.records)-1].Action
}
