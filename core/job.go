package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jdelaire/clipbot/core/download"
	"github.com/jdelaire/clipbot/core/urlmatch"
)

// MaxUploadBytes is the largest file the Bot API accepts from bots.
const MaxUploadBytes = 50 * 1024 * 1024

// Downloader fetches a URL into a directory owned by the caller.
type Downloader interface {
	Download(ctx context.Context, url, dir string) download.Result
}

type jobState int

const (
	stateIdle jobState = iota
	stateValidating
	stateProcessing
	stateUploading
	stateDone
	stateError
)

func (s jobState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateValidating:
		return "validating"
	case stateProcessing:
		return "processing"
	case stateUploading:
		return "uploading"
	case stateDone:
		return "done"
	case stateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s jobState) terminal() bool {
	return s == stateDone || s == stateError
}

// Outcome is how a job ended.
type Outcome int

const (
	OutcomeGreeted Outcome = iota
	OutcomeDelivered
	OutcomeInvalidURL
	OutcomeDownloadFailed
	OutcomeTooLarge
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGreeted:
		return "greeted"
	case OutcomeDelivered:
		return "delivered"
	case OutcomeInvalidURL:
		return "invalid_url"
	case OutcomeDownloadFailed:
		return "download_failed"
	case OutcomeTooLarge:
		return "too_large"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// job handles one text message from validation to upload. Each state
// handler returns the next state; run loops until a terminal state and
// removes the job's temp dir on the way out.
type job struct {
	id         string
	msg        InboundMessage
	relay      Relay
	downloader Downloader
	logger     *slog.Logger

	url     string
	dir     string
	status  *MessageRef
	result  download.Result
	outcome Outcome
	failure string
}

func (j *job) run(ctx context.Context) Outcome {
	defer j.cleanup()

	state := stateIdle
	for !state.terminal() {
		next := j.step(ctx, state)
		j.logger.Debug("job transition", "from", state, "to", next)
		state = next
	}

	if state == stateError {
		j.report(ctx)
	}
	j.logger.Info("job finished", "outcome", j.outcome)
	return j.outcome
}

func (j *job) step(ctx context.Context, s jobState) jobState {
	switch s {
	case stateIdle:
		return stateValidating
	case stateValidating:
		return j.validate(ctx)
	case stateProcessing:
		return j.process(ctx)
	case stateUploading:
		return j.upload(ctx)
	default:
		return j.fail(OutcomeFailed, msgUnexpected)
	}
}

func (j *job) validate(ctx context.Context) jobState {
	text := strings.TrimSpace(j.msg.Text)

	if !urlmatch.LooksLikeLink(text) {
		if _, err := j.reply(ctx, msgGreeting); err != nil {
			j.logger.Error("send greeting failed", "error", err)
		}
		j.outcome = OutcomeGreeted
		return stateDone
	}

	if !urlmatch.Supported(text) {
		return j.fail(OutcomeInvalidURL, msgInvalidURL)
	}

	j.url = urlmatch.Extract(text)
	return stateProcessing
}

func (j *job) process(ctx context.Context) jobState {
	dir, err := os.MkdirTemp("", "clipbot-"+j.id+"-")
	if err != nil {
		j.logger.Error("create temp dir failed", "error", err)
		return j.fail(OutcomeFailed, msgUnexpected)
	}
	j.dir = dir

	ref, err := j.reply(ctx, msgProcessing)
	if err != nil {
		j.logger.Error("send status failed", "error", err)
		return j.fail(OutcomeFailed, msgUnexpected)
	}
	j.status = &ref

	j.result = j.downloader.Download(ctx, j.url, j.dir)
	if !j.result.OK() {
		return j.fail(OutcomeDownloadFailed, msgDownloadFailed)
	}

	info, err := os.Stat(j.result.Path)
	if err != nil {
		j.logger.Error("downloaded file missing", "path", j.result.Path, "error", err)
		return j.fail(OutcomeDownloadFailed, msgDownloadFailed)
	}

	if info.Size() > MaxUploadBytes {
		j.logger.Warn("video too large", "path", j.result.Path, "size", info.Size())
		return j.fail(OutcomeTooLarge, msgTooLarge)
	}

	return stateUploading
}

func (j *job) upload(ctx context.Context) jobState {
	if err := j.relay.Edit(ctx, *j.status, msgUploading); err != nil {
		j.logger.Error("edit status failed", "error", err)
		return j.fail(OutcomeFailed, msgUnexpected)
	}

	err := j.relay.SendVideo(ctx, Video{
		ChatID:  j.msg.ChatID,
		ReplyTo: j.msg.MessageID,
		Path:    j.result.Path,
		Title:   j.result.Title,
	})
	if err != nil {
		j.logger.Error("upload failed", "path", j.result.Path, "error", err)
		return j.fail(OutcomeFailed, msgUnexpected)
	}

	if err := j.relay.Delete(ctx, *j.status); err != nil {
		// Video already delivered.
		j.logger.Warn("delete status failed", "error", err)
	}
	j.status = nil

	j.outcome = OutcomeDelivered
	return stateDone
}

// fail records the outcome and the text to show the user, and moves to the
// error state.
func (j *job) fail(o Outcome, text string) jobState {
	j.outcome = o
	j.failure = text
	return stateError
}

// report shows the failure text, replacing the status message when one
// was sent.
func (j *job) report(ctx context.Context) {
	if j.status != nil {
		err := j.relay.Edit(ctx, *j.status, j.failure)
		if err == nil {
			return
		}
		j.logger.Error("edit status failed", "error", err)
	}
	if _, err := j.reply(ctx, j.failure); err != nil {
		j.logger.Error("send failure notice failed", "error", err)
	}
}

func (j *job) reply(ctx context.Context, text string) (MessageRef, error) {
	return j.relay.Send(ctx, Reply{
		ChatID:  j.msg.ChatID,
		ReplyTo: j.msg.MessageID,
		Text:    text,
	})
}

func (j *job) cleanup() {
	if j.dir == "" {
		return
	}
	if err := os.RemoveAll(j.dir); err != nil {
		j.logger.Error("remove temp dir failed", "dir", j.dir, "error", err)
	}
}
