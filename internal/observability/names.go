// Package observability provides OpenTelemetry metrics and request-scoped logging.
package observability

// Metric names (Prometheus / OpenTelemetry).
const (
	MetricNameIngestions        = "docuchat_ingestions_total"
	MetricNameIngestionDuration = "docuchat_ingestion_duration_seconds"
	MetricNameChunksIndexed     = "docuchat_chunks_indexed_total"
	MetricNameQAPairsIndexed    = "docuchat_qa_pairs_indexed_total"
	MetricNameQuestions         = "docuchat_questions_total"
	MetricNameQuestionDuration  = "docuchat_question_duration_seconds"
	MetricNameAnswerFallbacks   = "docuchat_answer_fallbacks_total"
	MetricNameEmbeddingCalls    = "docuchat_embedding_calls_total"
)

// Attribute keys.
const (
	AttrStatus = "status"
	AttrReason = "reason"
	AttrSource = "source"
)

// AllowedIngestionStatuses for docuchat_ingestions_total and its duration histogram.
var AllowedIngestionStatuses = map[string]bool{
	"success":      true,
	"retry":        true,
	"failed_final": true,
}

// AllowedQuestionStatuses for docuchat_questions_total and its duration histogram.
var AllowedQuestionStatuses = map[string]bool{
	"answered": true,
	"fallback": true,
	"rejected": true,
}

// AllowedEmbeddingSources for docuchat_embedding_calls_total.
var AllowedEmbeddingSources = map[string]bool{
	"chunk": true,
	"qa":    true,
	"query": true,
}

// NormalizeLabel returns value if in allowed, otherwise "other".
func NormalizeLabel(value string, allowed map[string]bool) string {
	if allowed[value] {
		return value
	}

	return "other"
}
