package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/jdelaire/clipbot/core/ops"
	"github.com/jdelaire/clipbot/core/policy"
	"github.com/jdelaire/clipbot/core/ratelimit"
	"github.com/jdelaire/clipbot/core/urlmatch"
)

const (
	defaultMaxConcurrent = 4
	defaultJobTimeout    = 10 * time.Minute
	replyTimeout         = 10 * time.Second
)

// Dispatcher admits inbound messages, answers commands and runs a download
// job for every other text message.
type Dispatcher struct {
	policy     *policy.Policy
	ops        *ops.Registry
	limiter    *ratelimit.Limiter
	relay      Relay
	downloader Downloader
	logger     *slog.Logger
	jobTimeout time.Duration

	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(pol *policy.Policy, opsReg *ops.Registry, relay Relay, downloader Downloader, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		policy:     pol,
		ops:        opsReg,
		relay:      relay,
		downloader: downloader,
		logger:     logger,
		jobTimeout: defaultJobTimeout,
		sem:        semaphore.NewWeighted(defaultMaxConcurrent),
	}
}

// WithLimiter enables lockout of chats that keep failing.
func (d *Dispatcher) WithLimiter(l *ratelimit.Limiter) *Dispatcher {
	d.limiter = l
	return d
}

// WithConcurrency caps the number of jobs running at once.
func (d *Dispatcher) WithConcurrency(n int) *Dispatcher {
	if n > 0 {
		d.sem = semaphore.NewWeighted(int64(n))
	}
	return d
}

// WithJobTimeout bounds how long a single job may run.
func (d *Dispatcher) WithJobTimeout(timeout time.Duration) *Dispatcher {
	if timeout > 0 {
		d.jobTimeout = timeout
	}
	return d
}

// Handle processes an inbound message. Commands are answered inline;
// other text starts a job on its own goroutine so the caller can keep
// receiving updates.
func (d *Dispatcher) Handle(msg InboundMessage) {
	if err := d.policy.Authorize(msg.ChatID, msg.UpdateID, msg.Timestamp); err != nil {
		d.logger.Debug("message rejected by policy", "chat_id", msg.ChatID, "error", err)
		return
	}

	if isCommand(msg.Text) {
		cmd, args := parseCommand(msg.Text)
		d.runCommand(msg, cmd, args)
		return
	}

	// Non-link text is greeted without touching the limiter or a download slot.
	if !urlmatch.LooksLikeLink(msg.Text) {
		d.respond(msg, msgGreeting, false)
		return
	}

	if d.limiter != nil {
		if err := d.limiter.Check(msg.ChatID); err != nil {
			var locked *ratelimit.LockedError
			if errors.As(err, &locked) {
				d.logger.Info("chat locked out", "chat_id", msg.ChatID, "remaining", locked.Remaining)
			}
			d.respond(msg, "⏳ "+capitalize(err.Error())+".", false)
			return
		}
	}

	if !d.sem.TryAcquire(1) {
		d.respond(msg, msgBusy, false)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.sem.Release(1)
		d.runJob(msg)
	}()
}

// Wait blocks until all running jobs have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) runJob(msg InboundMessage) {
	id := uuid.New().String()[:8]
	logger := d.logger.With("job", id, "chat_id", msg.ChatID, "user", msg.Username)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in job", "recover", r)
			d.respond(msg, msgUnexpected, false)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
	defer cancel()

	j := &job{
		id:         id,
		msg:        msg,
		relay:      d.relay,
		downloader: d.downloader,
		logger:     logger,
	}
	outcome := j.run(ctx)

	if d.limiter == nil {
		return
	}
	switch outcome {
	case OutcomeDelivered:
		d.limiter.Reset(msg.ChatID)
	case OutcomeInvalidURL, OutcomeDownloadFailed:
		d.limiter.RecordFailure(msg.ChatID)
	}
}

func (d *Dispatcher) runCommand(msg InboundMessage, cmd, args string) {
	op := d.ops.Get(cmd)
	if op == nil {
		d.respond(msg, fmt.Sprintf("Unknown command: /%s\nSend /help for available commands.", cmd), false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	result, err := op.Execute(ctx, args)
	if err != nil {
		d.logger.Error("command failed", "command", cmd, "error", err)
		d.respond(msg, fmt.Sprintf("Error running /%s: %s", cmd, err), false)
		return
	}

	d.respond(msg, result, true)
}

func (d *Dispatcher) respond(msg InboundMessage, text string, markdown bool) {
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	_, err := d.relay.Send(ctx, Reply{
		ChatID:   msg.ChatID,
		ReplyTo:  msg.MessageID,
		Text:     text,
		Markdown: markdown,
	})
	if err != nil {
		d.logger.Error("failed to send response", "chat_id", msg.ChatID, "error", err)
	}
}

func isCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

// parseCommand extracts the command name and arguments from a message.
// It handles "/command", "/command args", and "/command@botname args".
func parseCommand(text string) (cmd, args string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}

	text = text[1:]
	parts := strings.SplitN(text, " ", 2)
	cmd = parts[0]
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	if at := strings.Index(cmd, "@"); at != -1 {
		cmd = cmd[:at]
	}

	cmd = strings.ToLower(cmd)
	return cmd, args
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
