package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// IngestionMetrics records document ingestion pipeline metrics.
// Methods accept ctx for future exemplar support.
type IngestionMetrics interface {
	RecordIngestionOutcome(ctx context.Context, status string)
	RecordIngestionDuration(ctx context.Context, duration time.Duration, status string)
	RecordChunksIndexed(ctx context.Context, count int64)
	RecordQAPairsIndexed(ctx context.Context, count int64)
	RecordEmbeddingCall(ctx context.Context, source string)
}

// ChatMetrics records question answering metrics.
type ChatMetrics interface {
	RecordQuestionOutcome(ctx context.Context, status string)
	RecordQuestionDuration(ctx context.Context, duration time.Duration, status string)
	RecordAnswerFallback(ctx context.Context, reason string)
	RecordEmbeddingCall(ctx context.Context, source string)
}

type ingestionMetrics struct {
	outcomes       metric.Int64Counter
	duration       metric.Float64Histogram
	chunksIndexed  metric.Int64Counter
	qaPairsIndexed metric.Int64Counter
	embeddingCalls metric.Int64Counter
}

// NewIngestionMetrics creates IngestionMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewIngestionMetrics(meter metric.Meter) (IngestionMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	outcomes, err := meter.Int64Counter(
		MetricNameIngestions,
		metric.WithDescription("Total document ingestions by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("create ingestions counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		MetricNameIngestionDuration,
		metric.WithDescription("Document ingestion duration (seconds)"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create ingestion duration histogram: %w", err)
	}

	chunksIndexed, err := meter.Int64Counter(
		MetricNameChunksIndexed,
		metric.WithDescription("Total chunks written to the index"),
	)
	if err != nil {
		return nil, fmt.Errorf("create chunks indexed counter: %w", err)
	}

	qaPairsIndexed, err := meter.Int64Counter(
		MetricNameQAPairsIndexed,
		metric.WithDescription("Total QA pairs written to the index"),
	)
	if err != nil {
		return nil, fmt.Errorf("create qa pairs indexed counter: %w", err)
	}

	embeddingCalls, err := meter.Int64Counter(
		MetricNameEmbeddingCalls,
		metric.WithDescription("Total embedding API calls by source"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding calls counter: %w", err)
	}

	return &ingestionMetrics{
		outcomes:       outcomes,
		duration:       duration,
		chunksIndexed:  chunksIndexed,
		qaPairsIndexed: qaPairsIndexed,
		embeddingCalls: embeddingCalls,
	}, nil
}

func (m *ingestionMetrics) RecordIngestionOutcome(ctx context.Context, status string) {
	status = NormalizeLabel(status, AllowedIngestionStatuses)
	m.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStatus, status)))
}

func (m *ingestionMetrics) RecordIngestionDuration(ctx context.Context, duration time.Duration, status string) {
	status = NormalizeLabel(status, AllowedIngestionStatuses)
	m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String(AttrStatus, status)))
}

func (m *ingestionMetrics) RecordChunksIndexed(ctx context.Context, count int64) {
	m.chunksIndexed.Add(ctx, count)
}

func (m *ingestionMetrics) RecordQAPairsIndexed(ctx context.Context, count int64) {
	m.qaPairsIndexed.Add(ctx, count)
}

func (m *ingestionMetrics) RecordEmbeddingCall(ctx context.Context, source string) {
	source = NormalizeLabel(source, AllowedEmbeddingSources)
	m.embeddingCalls.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrSource, source)))
}

type chatMetrics struct {
	outcomes       metric.Int64Counter
	duration       metric.Float64Histogram
	fallbacks      metric.Int64Counter
	embeddingCalls metric.Int64Counter
}

// NewChatMetrics creates ChatMetrics. Returns (nil, nil) when meter is nil (metrics disabled).
func NewChatMetrics(meter metric.Meter) (ChatMetrics, error) {
	if meter == nil {
		//nolint:nilnil // intentional: callers use "if metrics != nil" when metrics disabled
		return nil, nil
	}

	outcomes, err := meter.Int64Counter(
		MetricNameQuestions,
		metric.WithDescription("Total questions handled by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("create questions counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		MetricNameQuestionDuration,
		metric.WithDescription("Question handling duration (seconds)"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create question duration histogram: %w", err)
	}

	fallbacks, err := meter.Int64Counter(
		MetricNameAnswerFallbacks,
		metric.WithDescription("Total fallback answers served by reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("create answer fallbacks counter: %w", err)
	}

	embeddingCalls, err := meter.Int64Counter(
		MetricNameEmbeddingCalls,
		metric.WithDescription("Total embedding API calls by source"),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding calls counter: %w", err)
	}

	return &chatMetrics{
		outcomes:       outcomes,
		duration:       duration,
		fallbacks:      fallbacks,
		embeddingCalls: embeddingCalls,
	}, nil
}

func (m *chatMetrics) RecordQuestionOutcome(ctx context.Context, status string) {
	status = NormalizeLabel(status, AllowedQuestionStatuses)
	m.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStatus, status)))
}

func (m *chatMetrics) RecordQuestionDuration(ctx context.Context, duration time.Duration, status string) {
	status = NormalizeLabel(status, AllowedQuestionStatuses)
	m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String(AttrStatus, status)))
}

func (m *chatMetrics) RecordAnswerFallback(ctx context.Context, reason string) {
	m.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrReason, reason)))
}

func (m *chatMetrics) RecordEmbeddingCall(ctx context.Context, source string) {
	source = NormalizeLabel(source, AllowedEmbeddingSources)
	m.embeddingCalls.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrSource, source)))
}
