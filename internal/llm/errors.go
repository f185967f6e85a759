package llm

import (
	"context"
	"errors"
	"strings"
)

// FailureCategory is the user-facing classification of a completion failure.
type FailureCategory string

const (
	FailureAuth      FailureCategory = "authentication"
	FailureRateLimit FailureCategory = "rate-limit"
	FailureNetwork   FailureCategory = "network"
	FailureCanceled  FailureCategory = "canceled"
	FailureUnknown   FailureCategory = "unknown"
)

// Classify inspects a completion error and assigns a failure category.
// Classification is textual by design: the three provider SDKs wrap HTTP
// failures in their own error types, and status text is the common surface.
func Classify(err error) FailureCategory {
	if err == nil {
		return FailureUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FailureCanceled
	}
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "401", "403", "unauthorized", "authentication", "api key", "permission denied"):
		return FailureAuth
	case containsAny(msg, "429", "rate limit", "quota", "overloaded", "too many requests"):
		return FailureRateLimit
	case containsAny(msg, "connection", "dial tcp", "timeout", "unexpected eof", "no such host", "tls", "reset by peer"):
		return FailureNetwork
	default:
		return FailureUnknown
	}
}

// UserMessage renders a failure as a specific human-readable line.
func UserMessage(err error) string {
	switch Classify(err) {
	case FailureAuth:
		return "authentication failed: check the provider API key environment variable"
	case FailureRateLimit:
		return "the provider is rate limiting requests; wait and retry"
	case FailureNetwork:
		return "network error reaching the provider: " + err.Error()
	case FailureCanceled:
		return "request canceled"
	default:
		return "verification request failed: " + err.Error()
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
