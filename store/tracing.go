package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jacentio/platewise/store"

// traceOp starts a span for a DynamoDB operation. The returned function must
// be called with the operation's error when it completes:
//
//	ctx, end := s.traceOp(ctx, "GetItem")
//	defer func() { end(err) }()
//
// AWS API errors add their error code to the span. Operations slower than
// Config.SlowOpThreshold are logged at WARN.
func (s *Store) traceOp(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dynamodb."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("db.system", "dynamodb"),
			attribute.String("db.operation", operation),
			attribute.StringSlice("aws.dynamodb.table_names", []string{s.config.TableName}),
		}, attrs...)...),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			var apiErr smithy.APIError
			if errors.As(err, &apiErr) {
				span.SetAttributes(attribute.String("aws.error.code", apiErr.ErrorCode()))
			}
		}
		span.End()

		threshold := s.config.SlowOpThreshold
		if threshold <= 0 {
			return
		}
		if elapsed := time.Since(start); elapsed >= threshold {
			args := []any{
				slog.String("operation", operation),
				slog.String("table", s.config.TableName),
				slog.Duration("duration", elapsed),
			}
			if err != nil {
				args = append(args, slog.String("error", err.Error()))
			}
			s.logger.WarnContext(ctx, "slow dynamodb operation", args...)
		}
	}
}
