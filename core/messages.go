package core

// User-facing texts.
const (
	msgGreeting = "👋 Hi! Send me a TikTok video URL and I'll download it for you.\n\n" +
		"Use /help for more information."

	msgInvalidURL = "❌ Please send a valid TikTok URL.\n\n" +
		"Supported formats:\n" +
		"• https://www.tiktok.com/@username/video/1234567890\n" +
		"• https://vm.tiktok.com/xxxxx\n" +
		"• https://vt.tiktok.com/xxxxx"

	msgProcessing = "🔄 Processing your TikTok video... Please wait."
	msgUploading  = "📤 Uploading video..."

	msgDownloadFailed = "❌ Failed to download video. Please check:\n" +
		"• The URL is correct\n" +
		"• The video is public\n" +
		"• The video still exists\n\n" +
		"Try again or contact support if the issue persists."

	msgTooLarge = "❌ Video is too large to send via Telegram (>50MB).\n" +
		"Please try a shorter video."

	msgUnexpected = "❌ An error occurred while downloading the video.\n" +
		"Please try again later or contact support."

	msgBusy = "⏳ Busy, too many downloads running. Try again shortly."
)
