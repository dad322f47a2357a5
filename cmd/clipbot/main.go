package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jdelaire/clipbot/adapters/telegram_receiver"
	"github.com/jdelaire/clipbot/adapters/telegram_relay"
	"github.com/jdelaire/clipbot/adapters/ytdlp"
	"github.com/jdelaire/clipbot/core"
	"github.com/jdelaire/clipbot/core/configwatch"
	"github.com/jdelaire/clipbot/core/download"
	"github.com/jdelaire/clipbot/core/ops"
	"github.com/jdelaire/clipbot/core/policy"
	"github.com/jdelaire/clipbot/core/ratelimit"
	"github.com/jdelaire/clipbot/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file (default $"+config.EnvConfig+")")
	store := flag.Bool("store-token", false, "read a bot token from stdin, save it in the system keychain and exit")
	flag.Parse()

	if *store {
		if err := storeToken(os.Stdin); err != nil {
			fmt.Fprintf(os.Stderr, "clipbot: %s\n", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "bot token saved to the system keychain")
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "clipbot: %s\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if configPath == "" {
		configPath = os.Getenv(config.EnvConfig)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.InstallYTDLP {
		logger.Info("ensuring yt-dlp is installed")
		if err := ytdlp.Install(ctx); err != nil {
			return err
		}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return fmt.Errorf("telegram auth: %w", err)
	}

	downloader := download.NewService(ytdlp.New(logger), cfg.Format, cfg.DownloadTimeout(), logger)
	pol := policy.New(cfg.AllowedChats)

	reg := ops.NewRegistry()
	for _, op := range []ops.Op{&ops.StartOp{Registry: reg}, &ops.HelpOp{Registry: reg}} {
		if err := reg.Register(op); err != nil {
			return err
		}
	}

	publishMenu(bot, reg, logger)

	limiter := ratelimit.New()
	go sweep(ctx, limiter, logger)

	d := core.NewDispatcher(pol, reg, telegram_relay.New(bot), downloader, logger).
		WithLimiter(limiter).
		WithConcurrency(cfg.MaxConcurrentDownloads).
		WithJobTimeout(2 * cfg.DownloadTimeout())

	if configPath != "" {
		w := configwatch.New(configPath, configwatch.DefaultInterval, logger)
		w.OnReload(func(c *config.Config) { pol.SetAllowed(c.AllowedChats) })
		go w.Run(ctx)
	}

	printBanner(bot.Self.UserName, cfg)

	var recv core.Receiver = telegram_receiver.New(bot, d.Handle, logger)
	logger.Info("bot started", "username", bot.Self.UserName, "restricted", pol.Restricted())

	err = recv.Start(ctx)

	logger.Info("shutting down, waiting for running jobs")
	d.Wait()

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("receiver: %w", err)
	}
	return nil
}

// publishMenu registers the command list shown by Telegram clients.
func publishMenu(bot *tgbotapi.BotAPI, reg *ops.Registry, logger *slog.Logger) {
	menu := reg.Menu()
	cmds := make([]tgbotapi.BotCommand, len(menu))
	for i, c := range menu {
		cmds[i] = tgbotapi.BotCommand{Command: c.Name, Description: c.Description}
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(cmds...)); err != nil {
		logger.Warn("set command menu failed", "error", err)
	}
}

func sweep(ctx context.Context, l *ratelimit.Limiter, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(); n > 0 {
				logger.Debug("rate limiter swept", "chats", n)
			}
		}
	}
}
