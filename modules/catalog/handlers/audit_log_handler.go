package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/vicedu/vicedu/modules/catalog/domain/governance"
	"github.com/vicedu/vicedu/pkg/application"
)

// AuditLogHandler mirrors every governance decision into the structured log
// so operators can follow the workflow without querying the ledger.
type AuditLogHandler struct {
	log *logrus.Logger
}

func RegisterAuditLogHandler(app application.Application) *AuditLogHandler {
	h := &AuditLogHandler{log: app.Logger()}
	app.EventBus().Subscribe(h.onEditApplied)
	app.EventBus().Subscribe(h.onDraftQueued)
	app.EventBus().Subscribe(h.onDraftDecided)
	app.EventBus().Subscribe(h.onPublishDecided)
	return h
}

func (h *AuditLogHandler) onEditApplied(event governance.EditApplied) {
	h.entryFields(event.Entry).WithField("dropped", event.Dropped).Info("edit applied")
}

func (h *AuditLogHandler) onDraftQueued(event governance.DraftQueued) {
	h.entryFields(event.Entry).WithField("change_kind", event.Change.Kind).Info("draft queued")
}

func (h *AuditLogHandler) onDraftDecided(event governance.DraftDecided) {
	h.entryFields(event.Entry).WithField("deleted", event.Deleted).Info("draft decided")
}

func (h *AuditLogHandler) onPublishDecided(event governance.PublishDecided) {
	h.log.WithFields(logrus.Fields{
		"target_type": event.TargetType,
		"target_id":   event.TargetID,
		"status":      event.Status,
		"decided_by":  event.DecidedBy,
	}).Info("publish decided")
}

func (h *AuditLogHandler) entryFields(entry *governance.Entry) *logrus.Entry {
	if entry == nil {
		return logrus.NewEntry(h.log)
	}
	return h.log.WithFields(logrus.Fields{
		"entry_id":     entry.ID,
		"target_type":  entry.TargetType,
		"target_id":    entry.TargetID,
		"status":       entry.Status,
		"submitted_by": entry.SubmittedBy,
	})
}
