// Package client builds the outbound HTTP client used to fetch Discord attachments.
package client

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/jaxron/axonet/middleware/circuitbreaker"
	"github.com/jaxron/axonet/middleware/retry"
	"github.com/jaxron/axonet/pkg/client"
	"github.com/tf416/rosterbot/internal/setup/config"
	"github.com/tf416/rosterbot/internal/setup/telemetry/logger"
	"go.uber.org/zap"
)

// NewHTTPClient creates the attachment download client. The circuit breaker
// wraps retries so a CDN outage stops hammering after a few failures.
func NewHTTPClient(cfg *config.BotConfig, zapLogger *zap.Logger) *client.Client {
	return client.NewClient(
		client.WithMarshalFunc(sonic.Marshal),
		client.WithUnmarshalFunc(sonic.Unmarshal),
		client.WithLogger(logger.NewAxonet(zapLogger.Named("http"))),
		client.WithTimeout(time.Duration(cfg.RequestTimeout)*time.Millisecond),
		client.WithMiddleware(
			circuitbreaker.New(
				cfg.CircuitBreaker.MaxRequests,
				time.Duration(cfg.CircuitBreaker.Interval)*time.Millisecond,
				time.Duration(cfg.CircuitBreaker.Timeout)*time.Millisecond,
			),
			retry.New(
				cfg.Retry.MaxRetries,
				time.Duration(cfg.Retry.Delay)*time.Millisecond,
				time.Duration(cfg.Retry.MaxDelay)*time.Millisecond,
			),
		),
	)
}
