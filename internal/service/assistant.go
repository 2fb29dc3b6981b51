package service

import (
	"context"
	"strings"
	"time"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/oblozinskyroman/stars/internal/infra/observability"
	"github.com/oblozinskyroman/stars/internal/infra/resilience"
	"github.com/oblozinskyroman/stars/internal/port"

	"go.uber.org/zap"
)

// assistantFallback is shown whenever the AI proxy fails, whatever the
// actual cause.
const assistantFallback = "Prepáčte, momentálne nie som dostupný. Skúste to prosím neskôr."

const maxPromptLength = 2000

// AssistantService fronts the opaque AI-proxy function. The bulkhead caps
// how many proxy calls run at once; callers over the cap wait or time out
// with their request context.
type AssistantService struct {
	caller   port.AssistantCaller
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAssistantService wires the assistant endpoint.
func NewAssistantService(caller port.AssistantCaller, bulkhead *resilience.Bulkhead, metrics *observability.Metrics, logger *zap.Logger) *AssistantService {
	return &AssistantService{caller: caller, bulkhead: bulkhead, metrics: metrics, logger: logger}
}

// Ask forwards the prompt and returns the reply. Failures map to a generic
// localized message; the cause goes to the log only.
func (s *AssistantService) Ask(ctx context.Context, prompt string) (*domain.AssistantReply, error) {
	ctx, span := tracer.Start(ctx, "AssistantService.Ask")
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("assistant", time.Since(start)) }()

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, &domain.ErrValidation{Field: "prompt", Message: "Toto pole je povinné"}
	}
	if len(prompt) > maxPromptLength {
		return nil, &domain.ErrValidation{Field: "prompt", Message: "Správa je príliš dlhá"}
	}

	if err := s.bulkhead.Acquire(ctx); err != nil {
		s.metrics.IncrAssistant("error")
		s.logger.Warn("assistant bulkhead rejected request", zap.Error(err))
		return &domain.AssistantReply{Reply: assistantFallback}, nil
	}
	defer s.bulkhead.Release()

	reply, err := s.caller.Ask(ctx, prompt)
	if err != nil {
		s.metrics.IncrAssistant("error")
		s.metrics.IncrExternalError("assistant")
		s.logger.Error("assistant call failed", zap.Error(err))
		return &domain.AssistantReply{Reply: assistantFallback}, nil
	}

	s.metrics.IncrAssistant("success")
	return &domain.AssistantReply{Reply: reply}, nil
}
