// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// NotFoundError reports that a filter or search matched nothing. Batch callers
// treat it as an empty result, not a failure.
type NotFoundError struct {
	// What names the thing that was absent (keyword, folder, filter).
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no results: %s", e.What)
}

// ExtractionError reports that a PDF yielded no usable text. It is fatal to
// that paper's summarization but not to the batch, and it is raised before any
// paid LLM call is made.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extracting %s: no usable text", e.Path)
	}
	return fmt.Sprintf("extracting %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ExternalServiceError reports a source, download, or LLM failure. The current
// call is lost but accumulated state (costs, written files) stays intact and
// the caller may retry.
type ExternalServiceError struct {
	// Service names the collaborator ("semantic_scholar", "openai", "download").
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// ConfigurationError reports missing or invalid credentials or settings. It is
// raised before any paid or network call is attempted.
type ConfigurationError struct {
	// Key names the missing setting or secret.
	Key string
	// Reason explains what is wrong with it.
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Key, e.Reason)
}
