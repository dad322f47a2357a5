package ytdlp

import (
	"testing"

	"github.com/lrstanley/go-ytdlp"
)

func strPtr(s string) *string { return &s }

func TestMetadataFromInfo(t *testing.T) {
	info := []*ytdlp.ExtractedInfo{
		nil,
		{Title: strPtr("Example")},
		{Title: strPtr("Other"), Filename: strPtr("/tmp/x/123.mp4")},
	}

	meta := metadataFromInfo(info)
	if meta.Title != "Example" {
		t.Errorf("title = %q, want Example", meta.Title)
	}
	if meta.Filename != "/tmp/x/123.mp4" {
		t.Errorf("filename = %q, want /tmp/x/123.mp4", meta.Filename)
	}
}

func TestMetadataFromInfoEmpty(t *testing.T) {
	meta := metadataFromInfo(nil)
	if meta.Title != "" || meta.Filename != "" {
		t.Errorf("expected empty metadata, got %+v", meta)
	}
}
