package services

import (
	"encoding/json"
	"time"

	"certification-portal-api/models"
)

// AuditTrailWriter builds and reads the append-only status history. The
// append itself rides inside the store's transition commit so a state write
// can never land without its audit record.
type AuditTrailWriter struct {
	store WorkflowStore
}

// NewAuditTrailWriter builds a writer over the given store.
func NewAuditTrailWriter(store WorkflowStore) *AuditTrailWriter {
	return &AuditTrailWriter{store: store}
}

// NewEntry builds one immutable history record. from is nil only for the
// creation event; toStatus records the status that actually committed, which
// may differ from what the caller requested.
func NewEntry(applicationID int, from *Status, to Status, changedBy int, reason string, metadata map[string]string, at time.Time) models.ApplicationStatusHistory {
	entry := models.ApplicationStatusHistory{
		ApplicationID: applicationID,
		ToStatus:      string(to),
		ChangedBy:     changedBy,
		ChangedAt:     at,
	}
	if from != nil {
		s := string(*from)
		entry.FromStatus = &s
	}
	if reason != "" {
		entry.Reason = &reason
	}
	if len(metadata) > 0 {
		if raw, err := json.Marshal(metadata); err == nil {
			s := string(raw)
			entry.Metadata = &s
		}
	}
	return entry
}

// History returns the application's audit trail ordered oldest first. The
// sequence of to_status values is always a valid walk of the transition
// table, starting at DRAFT.
func (w *AuditTrailWriter) History(applicationID int) ([]models.ApplicationStatusHistory, error) {
	return w.store.History(applicationID)
}
