package errx

import (
	"context"
	"errors"
	"net/http"
)

// WrapLLM maps chat model failures to AppError.
func WrapLLM(err error) error {
	return wrapUpstream(err, LLMErrorMessage)
}

// WrapEmbedding maps embedding provider failures to AppError.
func WrapEmbedding(err error) error {
	return wrapUpstream(err, EmbeddingErrorMessage)
}

func wrapUpstream(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return New(err, http.StatusGatewayTimeout, message)
	}
	return New(err, http.StatusBadGateway, message)
}
