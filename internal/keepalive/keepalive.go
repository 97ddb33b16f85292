// Package keepalive periodically pings an external URL so free-tier hosting
// platforms do not idle the daemon out.
package keepalive

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"reelforge/internal/logging"
)

const defaultInterval = 14 * time.Minute

// Pinger issues a GET request to the configured URL on a fixed interval.
type Pinger struct {
	url        string
	interval   time.Duration
	logger     *slog.Logger
	httpClient *http.Client

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a pinger. A non-positive interval falls back to the default.
func New(url string, interval time.Duration, logger *slog.Logger) *Pinger {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pinger{
		url:        strings.TrimSpace(url),
		interval:   interval,
		logger:     logging.NewComponentLogger(logger, "keepalive"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Start launches the ping loop. Starting an already-running or URL-less
// pinger is a no-op.
func (p *Pinger) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.url == "" || p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		p.ping(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.ping(ctx)
			}
		}
	}()
	p.logger.Info("keepalive started",
		logging.String("url", p.url),
		logging.Duration("interval", p.interval),
	)
}

// Stop halts the ping loop and waits for the in-flight ping to finish.
func (p *Pinger) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Pinger) ping(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.logger.Warn("keepalive request build failed", logging.Error(err))
		return
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("keepalive ping failed", logging.Error(err))
		}
		return
	}
	_ = resp.Body.Close()
	p.logger.Debug("keepalive ping", logging.Int("status", resp.StatusCode))
}
