package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/0xcro3dile/docguard/internal/domain/ports"
)

var (
	// ErrMissingCredential means no API key is configured.
	ErrMissingCredential = errors.New("knowledge service credential is not configured")
	// ErrEmptyPrompt means the sanitized prompt was blank.
	ErrEmptyPrompt = errors.New("empty prompt")
	// ErrUnexpectedStatus is wrapped by StatusError.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// StatusError is a non-2xx response from the knowledge service.
type StatusError struct {
	Service string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Service, e.Code)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// classify wraps err into a ports.KnowledgeError with the matching class.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ke *ports.KnowledgeError
	if errors.As(err, &ke) {
		return err
	}

	class := ports.KnowledgeTransport
	var netErr net.Error
	switch {
	case errors.Is(err, ErrMissingCredential):
		class = ports.KnowledgeMissingCredential
	case errors.Is(err, ErrEmptyPrompt):
		class = ports.KnowledgeEmptyPrompt
	case errors.Is(err, ErrUnexpectedStatus):
		class = ports.KnowledgeHTTPStatus
	case errors.Is(err, context.DeadlineExceeded):
		class = ports.KnowledgeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		class = ports.KnowledgeTimeout
	}
	return &ports.KnowledgeError{Class: class, Err: err}
}

func malformed(err error) error {
	return &ports.KnowledgeError{Class: ports.KnowledgeMalformed, Err: err}
}
