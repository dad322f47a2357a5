package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/jdelaire/clipbot/internal/config"
)

func printBanner(username string, cfg *config.Config) {
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgWhite)
	value := color.New(color.FgGreen)

	title.Fprintln(os.Stderr, "🎵 clipbot")
	line := func(k, v string) {
		label.Fprintf(os.Stderr, "  %-14s", k)
		value.Fprintln(os.Stderr, v)
	}
	line("bot", "@"+username)
	line("format", cfg.Format)
	line("concurrency", fmt.Sprint(cfg.MaxConcurrentDownloads))
	line("timeout", cfg.DownloadTimeout().String())
	if len(cfg.AllowedChats) == 0 {
		line("chats", "all")
	} else {
		line("chats", fmt.Sprintf("%d allowed", len(cfg.AllowedChats)))
	}
}
