package events

import (
	"github.com/sirupsen/logrus"
)

// PlanningEventTypes lists every event the planning service appends
var PlanningEventTypes = []string{
	ForecastCorrectionUpdatedEvent,
	ForecastRedistributedEvent,
	ExceptionStatusChangedEvent,
}

// AuditLogger writes one structured log line per planning event
type AuditLogger struct {
	logger logrus.FieldLogger
}

func NewAuditLogger(logger logrus.FieldLogger) *AuditLogger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuditLogger{logger: logger}
}

var _ EventHandler = (*AuditLogger)(nil)

func (a *AuditLogger) Handle(event Event) error {
	fields := logrus.Fields{
		"event_id": event.ID(),
		"type":     event.Type(),
		"stream":   event.StreamID(),
		"version":  event.Version(),
	}
	switch data := event.Data().(type) {
	case ForecastCorrectionUpdated:
		fields["key"] = data.Key.String()
		fields["value"] = data.Value
	case ForecastRedistributed:
		fields["target"] = data.Target
		fields["allocated"] = data.Allocated
		fields["customers"] = len(data.Values)
	case ExceptionStatusChanged:
		fields["exception_id"] = data.ExceptionID
		fields["status"] = data.Status.String()
	}
	a.logger.WithFields(fields).Info("planning event")
	return nil
}

func (a *AuditLogger) CanHandle(eventType string) bool {
	for _, t := range PlanningEventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}
