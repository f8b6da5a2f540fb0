package noop

import (
	"context"

	"go.uber.org/zap"

	"pharmapos/internal/port"
)

type noopNotifier struct {
	log *zap.Logger
}

// NewNoopNotifier creates a ComplianceNotifier that only logs review notices.
func NewNoopNotifier(log *zap.Logger) port.ComplianceNotifier {
	return &noopNotifier{log: log}
}

func (n *noopNotifier) NotifyRateReview(_ context.Context, notice port.ReviewNotice) error {
	for _, w := range notice.Warnings {
		n.log.Warn("gst rate needs review",
			zap.String("kind", string(notice.Kind)),
			zap.String("document_id", notice.DocumentID.String()),
			zap.String("number", notice.Number),
			zap.Int("line_no", w.LineNo),
			zap.String("source", string(w.Source)),
			zap.String("message", w.Message),
		)
	}
	return nil
}
