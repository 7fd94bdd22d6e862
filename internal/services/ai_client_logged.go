package services

import (
	"context"
	"time"

	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/repos"
	"github.com/mailforge/mailforge-backend/internal/types"
)

// loggedAIClient wraps an AIClient and records every call to the
// ai_call_log table. Logging failures never fail the wrapped call.
type loggedAIClient struct {
	inner   AIClient
	callLog repos.AICallLogRepo
	log     *logger.Logger
}

func NewLoggedAIClient(inner AIClient, callLog repos.AICallLogRepo, log *logger.Logger) AIClient {
	return &loggedAIClient{
		inner:   inner,
		callLog: callLog,
		log:     log.With("service", "LoggedAIClient"),
	}
}

func (c *loggedAIClient) Chat(ctx context.Context, messages []AIMessage, opts *AIOptions) (string, error) {
	start := time.Now()
	out, err := c.inner.Chat(ctx, messages, opts)
	model := ""
	if opts != nil {
		model = opts.Model
	}
	c.record(ctx, "chat", model, start, err)
	return out, err
}

func (c *loggedAIClient) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	start := time.Now()
	out, err := c.inner.Embed(ctx, inputs)
	c.record(ctx, "embed", "", start, err)
	return out, err
}

func (c *loggedAIClient) record(ctx context.Context, callType, model string, start time.Time, callErr error) {
	entry := &types.AICallLog{
		CallType:   callType,
		Model:      model,
		DurationMS: time.Since(start).Milliseconds(),
		Success:    callErr == nil,
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	if err := c.callLog.Create(ctx, nil, entry); err != nil {
		c.log.Warn("Failed to persist AI call log entry", "error", err)
	}
}
