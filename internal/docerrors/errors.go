// Package docerrors provides sentinel and custom error types for the application.
package docerrors

// ErrNotFound represents a "not found" error.
// Use when a requested resource doesn't exist.
var ErrNotFound = &NotFoundError{}

// NotFoundError is a sentinel error for resources that are not found.
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new NotFoundError with a custom message.
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Resource != "" {
		return e.Resource + " not found"
	}

	return "resource not found"
}

// Is implements the error interface for error comparison.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)

	return ok
}

// ErrValidation represents a validation error.
// Use when client input fails validation (e.g. an empty or too-short question).
var ErrValidation = &ValidationError{}

// ValidationError is a sentinel error for validation failures.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new ValidationError with a custom message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Field != "" {
		return "validation failed for field: " + e.Field
	}

	return "validation error"
}

// Is implements the error interface for error comparison.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)

	return ok
}

// ErrConflict is the sentinel for conflict errors (e.g. duplicate email on signup).
var ErrConflict = &ConflictError{}

// ConflictError is a sentinel error for resource conflicts.
type ConflictError struct {
	Message string
}

// NewConflictError creates a ConflictError with a custom message.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return "conflict"
}

// Is implements the error interface for error comparison.
func (e *ConflictError) Is(target error) bool {
	_, ok := target.(*ConflictError)

	return ok
}

// ErrNotProcessed is the sentinel returned when a question targets a document
// that has no embedding index yet (upload done, ingestion not finished or failed).
// Distinct from "index exists, nothing relevant", which is a successful empty retrieval.
var ErrNotProcessed = &NotProcessedError{}

// NotProcessedError is a sentinel error for querying an unprocessed document.
type NotProcessedError struct {
	Message string
}

// NewNotProcessedError creates a NotProcessedError with a custom message.
func NewNotProcessedError(message string) *NotProcessedError {
	return &NotProcessedError{Message: message}
}

// Error implements the error interface.
func (e *NotProcessedError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return "document not processed yet"
}

// Is implements the error interface for error comparison.
func (e *NotProcessedError) Is(target error) bool {
	_, ok := target.(*NotProcessedError)

	return ok
}

// ErrExtraction is the sentinel for text extraction failures (unreadable or empty source).
var ErrExtraction = &ExtractionError{}

// ExtractionError is a sentinel error for document text extraction failures.
type ExtractionError struct {
	Message string
}

// NewExtractionError creates an ExtractionError with a custom message.
func NewExtractionError(message string) *ExtractionError {
	return &ExtractionError{Message: message}
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return "text extraction failed"
}

// Is implements the error interface for error comparison.
func (e *ExtractionError) Is(target error) bool {
	_, ok := target.(*ExtractionError)

	return ok
}

// ErrEmbedding is the sentinel for external embedding call failures.
var ErrEmbedding = &EmbeddingError{}

// EmbeddingError is a sentinel error for embedding service failures.
type EmbeddingError struct {
	Message string
}

// NewEmbeddingError creates an EmbeddingError with a custom message.
func NewEmbeddingError(message string) *EmbeddingError {
	return &EmbeddingError{Message: message}
}

// Error implements the error interface.
func (e *EmbeddingError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return "embedding generation failed"
}

// Is implements the error interface for error comparison.
func (e *EmbeddingError) Is(target error) bool {
	_, ok := target.(*EmbeddingError)

	return ok
}

// ErrGeneration is the sentinel for generative model failures, including
// structured output that could not be parsed.
var ErrGeneration = &GenerationError{}

// GenerationError is a sentinel error for generative model failures.
type GenerationError struct {
	Message string
}

// NewGenerationError creates a GenerationError with a custom message.
func NewGenerationError(message string) *GenerationError {
	return &GenerationError{Message: message}
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return "generation failed"
}

// Is implements the error interface for error comparison.
func (e *GenerationError) Is(target error) bool {
	_, ok := target.(*GenerationError)

	return ok
}
