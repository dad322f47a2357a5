package ytdlp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/jdelaire/clipbot/core/download"
)

const progressInterval = 2 * time.Second

// Extractor runs yt-dlp through go-ytdlp.
type Extractor struct {
	logger *slog.Logger
}

// New creates a yt-dlp backed extractor.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Install makes sure a yt-dlp binary is available, downloading one into the
// user cache directory if needed.
func Install(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("install yt-dlp: %w", err)
	}
	return nil
}

// Extract downloads url as configured by opts and reports the title and
// output filename parsed from yt-dlp's info JSON.
func (e *Extractor) Extract(ctx context.Context, url string, opts download.Options) (download.Metadata, error) {
	cmd := ytdlp.New().
		Format(opts.Format).
		Output(opts.OutputTemplate).
		NoPlaylist().
		NoWarnings().
		RestrictFilenames().
		PrintJSON()

	cmd.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
		e.logger.Debug("download progress",
			"url", url,
			"downloaded", update.DownloadedBytes,
			"total", update.TotalBytes,
		)
	})

	res, err := cmd.Run(ctx, url)
	if err != nil {
		return download.Metadata{}, fmt.Errorf("yt-dlp run: %w", err)
	}

	info, err := res.GetExtractedInfo()
	if err != nil {
		return download.Metadata{}, fmt.Errorf("parse info: %w", err)
	}
	return metadataFromInfo(info), nil
}

func metadataFromInfo(info []*ytdlp.ExtractedInfo) download.Metadata {
	var meta download.Metadata
	for _, i := range info {
		if i == nil {
			continue
		}
		if meta.Title == "" && i.Title != nil {
			meta.Title = *i.Title
		}
		if meta.Filename == "" && i.Filename != nil {
			meta.Filename = *i.Filename
		}
	}
	return meta
}
