package events

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/url-shortener/internal/messaging"
	"go.uber.org/zap"
)

var errMissingCode = errors.New("event has no code")

// AuditLog writes one structured log line per created mapping.
type AuditLog struct {
	logger *zap.Logger
}

// NewAuditLog creates a new audit log writing to logger.
func NewAuditLog(logger *zap.Logger) *AuditLog {
	return &AuditLog{logger: logger.Named("audit")}
}

// URLShortened records a created mapping.
func (a *AuditLog) URLShortened(_ context.Context, event *URLShortened) error {
	if event.Code == "" {
		return errMissingCode
	}

	a.logger.Info("short url created",
		zap.String("code", event.Code),
		zap.String("longUrl", event.LongURL),
		zap.Time("createdAt", event.CreatedAt),
		zap.String("requestId", event.RequestID),
	)

	return nil
}

// NewAuditConsumer subscribes the audit log to TopicURLShortened.
func NewAuditConsumer(
	subscriber message.Subscriber,
	audit *AuditLog,
	logger *zap.Logger,
) *messaging.Consumer[URLShortened] {
	return messaging.NewConsumer(subscriber, TopicURLShortened, audit.URLShortened, logger)
}
