package log

import (
	"context"
	"log/slog"
	"time"

	"ledger/internal/core"
)

type contextKey struct{}

// WithContext returns a copy of ctx carrying logger.
func WithContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts a logger from ctx
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	// Return default logger if not found
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides domain-specific log events
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogTransactionCreated logs a committed transaction
func (sl *StructuredLogger) LogTransactionCreated(ctx context.Context, tx core.Transaction) {
	category := ""
	if tx.Category != nil {
		category = tx.Category.Title
	}
	fields := NewFields().
		WithTransaction(tx.ID, tx.Title, tx.Type.String(), tx.Value.Cents, category).
		WithOperation(OpCreate).
		WithComponent(ComponentLedger)

	sl.logger.Logger.InfoContext(ctx, "Transaction created", fields.ToSlice()...)
}

// LogImportCompleted logs a committed CSV import
func (sl *StructuredLogger) LogImportCompleted(ctx context.Context, source string, imported, newCategories, skipped int, took time.Duration) {
	fields := NewFields().
		WithImport(source, imported, newCategories, skipped).
		WithOperation(OpImport).
		WithComponent(ComponentImport)
	fields[FieldDuration] = took.Milliseconds()

	sl.logger.Logger.InfoContext(ctx, "Import completed", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.Logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
