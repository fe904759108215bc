package telemetry

import (
	"github.com/multicommerce/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing registers the otelgorm plugin on the GORM instance so
// every query runs inside a child span of the request, plus an after
// callback adding rows-affected and error status to the span.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.DBTraceEnabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName("postgresql"),
	}
	if !cfg.DBLogFullSQL {
		// Keep query parameters out of spans.
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if err := registerSpanEnrichment(db); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
	)
	return nil
}

// registerSpanEnrichment adds an after callback per operation type that
// annotates the otelgorm span with result metadata.
func registerSpanEnrichment(db *gorm.DB) error {
	if err := db.Callback().Create().After("gorm:create").Register("otel_enrich:after_create", enrichSpan); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("otel_enrich:after_query", enrichSpan); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("otel_enrich:after_update", enrichSpan); err != nil {
		return err
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("otel_enrich:after_delete", enrichSpan); err != nil {
		return err
	}
	if err := db.Callback().Raw().After("gorm:raw").Register("otel_enrich:after_raw", enrichSpan); err != nil {
		return err
	}
	return nil
}

// enrichSpan runs after each database operation and records rows affected,
// the table, and any non-not-found error on the active span.
func enrichSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}
}
