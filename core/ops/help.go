package ops

import (
	"context"
	"fmt"
	"strings"
)

const startText = `🎵 *TikTok Video Downloader Bot* 🎵

Welcome! I can help you download TikTok videos.

*How to use:*
1. Send me a TikTok video URL
2. I'll download and send you the video

` + formatsText + `
%s
Just send me a TikTok URL and I'll do the rest! 🚀`

const helpText = `*Help - TikTok Video Downloader Bot*

*How to download TikTok videos:*
1. Copy the TikTok video URL from the TikTok app or website
2. Send the URL to this bot
3. Wait for the bot to process and download the video
4. The bot will send you the downloaded video

` + formatsText + `
*Tips:*
- Make sure the TikTok video is public
- The bot may take a few seconds to process longer videos
- If download fails, try again or check if the URL is correct
- Videos larger than 50MB cannot be sent

%s
*Note:* This bot only downloads publicly available content.`

const formatsText = `*Supported formats:*
- https://www.tiktok.com/@username/video/1234567890
- https://vm.tiktok.com/xxxxx
- https://vt.tiktok.com/xxxxx
`

// StartOp greets the user and explains how to use the bot.
type StartOp struct {
	Registry *Registry
}

func (s *StartOp) Name() string        { return "start" }
func (s *StartOp) Description() string { return "Show the welcome message" }

func (s *StartOp) Execute(_ context.Context, _ string) (string, error) {
	return fmt.Sprintf(startText, commandList(s.Registry)), nil
}

// HelpOp explains how to download a video and lists the commands.
type HelpOp struct {
	Registry *Registry
}

func (h *HelpOp) Name() string        { return "help" }
func (h *HelpOp) Description() string { return "Show help information" }

func (h *HelpOp) Execute(_ context.Context, _ string) (string, error) {
	return fmt.Sprintf(helpText, commandList(h.Registry)), nil
}

func commandList(reg *Registry) string {
	if reg == nil {
		return ""
	}
	all := reg.List()
	if len(all) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("*Commands:*\n")
	for _, op := range all {
		fmt.Fprintf(&b, "/%s - %s\n", op.Name(), op.Description())
	}
	return b.String()
}
