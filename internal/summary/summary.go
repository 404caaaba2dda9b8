// Package summary puts the external text-generation providers behind one
// Summarizer interface and turns their errors into a small set of failure
// reasons the analysis layer can log and fall back on.
package summary

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"musicfreq/internal/services"
	"musicfreq/internal/services/anthropic"
	"musicfreq/internal/services/llm"
)

// Request is one summarization call.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Failure explains why a summarization produced no text.
type Failure int

const (
	FailureNone Failure = iota
	FailureUnconfigured
	FailureTimeout
	FailureAuth
	FailureQuota
	FailureMalformed
	FailureUnavailable
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureUnconfigured:
		return "unconfigured"
	case FailureTimeout:
		return "timeout"
	case FailureAuth:
		return "auth"
	case FailureQuota:
		return "quota"
	case FailureMalformed:
		return "malformed"
	default:
		return "unavailable"
	}
}

// Outcome is either Text or a Failure with its cause.
type Outcome struct {
	Text    string
	Failure Failure
	Err     error
}

// OK reports whether the outcome carries usable text.
func (o Outcome) OK() bool {
	return o.Failure == FailureNone && strings.TrimSpace(o.Text) != ""
}

// Summarizer produces free text for a Request.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) Outcome
	HealthCheck(ctx context.Context) error
	Describe() string
}

// completer is the surface shared by the llm and anthropic clients.
type completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
	HealthCheck(ctx context.Context) error
	Model() string
}

// Provider adapts a completion client to Summarizer.
type Provider struct {
	name   string
	client completer
}

// NewProvider wraps a completion client under a provider name.
func NewProvider(name string, client completer) *Provider {
	return &Provider{name: name, client: client}
}

// Summarize calls the provider once. It never returns partial text.
func (p *Provider) Summarize(ctx context.Context, req Request) Outcome {
	text, err := p.client.Complete(ctx, req.System, req.Prompt, req.MaxTokens)
	if err != nil {
		return Outcome{Failure: Classify(err), Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return Outcome{
			Failure: FailureMalformed,
			Err:     services.Wrap(services.ErrExternalService, p.name, "summarize", "empty completion", nil),
		}
	}
	return Outcome{Text: text}
}

// HealthCheck verifies credentials and model with a minimal request.
func (p *Provider) HealthCheck(ctx context.Context) error {
	return p.client.HealthCheck(ctx)
}

// Describe returns "provider/model".
func (p *Provider) Describe() string {
	return p.name + "/" + p.client.Model()
}

// Unconfigured is the Summarizer used when no API key is available.
type Unconfigured struct {
	Reason string
}

func (u Unconfigured) Summarize(context.Context, Request) Outcome {
	return Outcome{Failure: FailureUnconfigured, Err: u.err()}
}

func (u Unconfigured) HealthCheck(context.Context) error {
	return u.err()
}

func (u Unconfigured) Describe() string {
	return "disabled"
}

func (u Unconfigured) err() error {
	reason := u.Reason
	if reason == "" {
		reason = "no api key configured"
	}
	return services.Wrap(services.ErrConfiguration, "summary", "", reason, nil)
}

// Classify maps a provider error to a Failure.
func Classify(err error) Failure {
	if err == nil {
		return FailureNone
	}
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return FailureUnconfigured
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, services.ErrTimeout):
		return FailureTimeout
	}

	var emptyErr *llm.EmptyContentError
	if errors.As(err, &emptyErr) {
		return FailureMalformed
	}

	var statusErr *llm.HTTPStatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(statusErr.StatusCode)
	}
	if code, ok := anthropic.StatusCode(err); ok {
		return classifyStatus(code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureUnavailable
}

func classifyStatus(code int) Failure {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return FailureAuth
	case code == http.StatusTooManyRequests, code == http.StatusPaymentRequired:
		return FailureQuota
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		return FailureTimeout
	case code >= http.StatusInternalServerError:
		return FailureUnavailable
	case code >= http.StatusBadRequest:
		return FailureMalformed
	default:
		return FailureUnavailable
	}
}
