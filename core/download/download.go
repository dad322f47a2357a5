// Package download resolves a share URL to a video file on disk.
package download

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultTitle is used when the extractor reports no title.
	DefaultTitle = "TikTok_Video"

	DefaultFormat  = "best[ext=mp4]/best"
	DefaultTimeout = 5 * time.Minute

	outputTemplate = "%(id)s.%(ext)s"
)

// VideoExtensions are the file extensions treated as downloaded videos.
var VideoExtensions = []string{".mp4", ".m4v", ".mov", ".webm", ".mkv"}

// Options configures a single extraction. A fresh value is built for every
// call and never shared between calls.
type Options struct {
	Format         string
	OutputTemplate string
	Timeout        time.Duration
}

// Metadata is what an extractor reports about a finished download.
type Metadata struct {
	Title    string
	Filename string
}

// Extractor fetches a URL's metadata and media according to opts.
type Extractor interface {
	Extract(ctx context.Context, url string, opts Options) (Metadata, error)
}

// Result is the outcome of a download. The zero value means failure.
type Result struct {
	Path  string
	Title string
}

// OK reports whether the result names both a file and a title.
func (r Result) OK() bool {
	return r.Path != "" && r.Title != ""
}

// Service downloads videos into caller-owned directories.
type Service struct {
	extractor Extractor
	format    string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewService creates a download service. Empty format and zero timeout fall
// back to DefaultFormat and DefaultTimeout.
func NewService(extractor Extractor, format string, timeout time.Duration, logger *slog.Logger) *Service {
	if format == "" {
		format = DefaultFormat
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		extractor: extractor,
		format:    format,
		timeout:   timeout,
		logger:    logger,
	}
}

// Download fetches url into dir. Failures are logged and reported as the
// zero Result. The caller owns dir and is responsible for removing it.
func (s *Service) Download(ctx context.Context, url, dir string) Result {
	opts := Options{
		Format:         s.format,
		OutputTemplate: filepath.Join(dir, outputTemplate),
		Timeout:        s.timeout,
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	meta, err := s.extractor.Extract(ctx, url, opts)
	if err != nil {
		s.logger.Error("download failed", "url", url, "error", err)
		return Result{}
	}

	path, err := FindVideo(dir, meta.Filename)
	if err != nil {
		s.logger.Error("no video file after download", "url", url, "dir", dir, "error", err)
		return Result{}
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = DefaultTitle
	}

	s.logger.Info("download complete", "url", url, "path", path, "title", title)
	return Result{Path: path, Title: title}
}

// FindVideo locates the downloaded video in dir. If hint names a video file
// inside dir it wins; otherwise the lexicographically first video file is
// returned.
func FindVideo(dir, hint string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	if hint != "" && isVideo(hint) {
		absHint, err := filepath.Abs(hint)
		if err == nil && filepath.Dir(absHint) == absDir && isRegular(absHint) {
			return absHint, nil
		}
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return "", err
	}

	// ReadDir returns entries sorted by name.
	for _, e := range entries {
		if e.Type().IsRegular() && isVideo(e.Name()) {
			return filepath.Join(absDir, e.Name()), nil
		}
	}
	return "", os.ErrNotExist
}

func isVideo(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, v := range VideoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
