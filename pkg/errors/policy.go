package errors

import (
	"fmt"
	"strings"

	"github.com/joe/efs/pkg/logger"
)

// Policy decides what happens to a failure in a catch-and-report operation.
type Policy int

const (
	// Log reports the failure and returns the safe default (the default policy).
	Log Policy = iota
	// Ignore swallows the failure and returns the safe default.
	Ignore
	// Raise returns the failure to the caller.
	Raise
)

// String returns the flag form of the policy.
func (p Policy) String() string {
	switch p {
	case Log:
		return "log"
	case Ignore:
		return "ignore"
	case Raise:
		return "raise"
	default:
		return "unknown"
	}
}

// ParsePolicy parses "ignore", "log" or "raise" (alias "strict").
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "log", "":
		return Log, nil
	case "ignore":
		return Ignore, nil
	case "raise", "strict":
		return Raise, nil
	default:
		return Log, fmt.Errorf("invalid error policy: %s (valid: ignore, log, raise)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Handler applies a Policy to failures, logging enriched errors under Log.
type Handler struct {
	logger   logger.Logger
	enricher Enricher
}

// NewHandler creates a Handler reporting through log. A nil log writes to stderr.
func NewHandler(log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewStderrLogger()
	}

	return &Handler{
		logger:   log,
		enricher: NewEnricher(),
	}
}

// DefaultHandler is the handler used when a component is not given one.
func DefaultHandler() *Handler {
	return NewHandler(nil)
}

// Handle applies policy to err. It returns err (enriched) under Raise and nil
// otherwise. message is prefixed to the logged line.
func (h *Handler) Handle(err error, policy Policy, message string) error {
	if err == nil {
		return nil
	}

	enriched := h.enricher.Enrich(err, "")

	switch policy {
	case Ignore:
		return nil
	case Raise:
		return enriched
	case Log:
		h.report(enriched, message)
		return nil
	default:
		h.report(enriched, message)
		return nil
	}
}

func (h *Handler) report(err error, message string) {
	line := err.Error()
	if message != "" {
		line = message + ": " + line
	}

	h.logger.LogError(fmt.Sprintf("%s [%s]", line, Classify(err)))

	if formatted := FormatSuggestions(err); formatted != "" {
		h.logger.LogDebug("Try these solutions:\n" + formatted)
	}
}
