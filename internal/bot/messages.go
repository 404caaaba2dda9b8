package bot

import (
	"fmt"
	"strings"
)

const (
	parseModeHTML = "HTML"

	analyzeCallbackPrefix = "analyze_music"

	welcomeText = "👋 Welcome to Music Frequency Bot!\n\n" +
		"I can help you track the most popular music in your group.\n\n" +
		"Use /collect to start collecting music files from the chat history.\n" +
		"Use /help to see all available commands."

	helpText = "🎵 <b>Music Frequency Bot</b> 🎵\n\n" +
		"<b>Available commands:</b>\n" +
		"/start - Start the bot\n" +
		"/help - Show this help message\n" +
		"/collect - Start collecting music files from the chat\n" +
		"/status - Check the current collection status\n" +
		"/clear - Clear the collected file list\n" +
		"/nettest - Test network connectivity\n"

	collectUsageText = "Please specify a chat username or ID:\n" +
		"<code>/collect @chatusername</code> or <code>/collect -1001234567890</code>"

	chatNotFoundText   = "❌ Could not find the specified chat. Check permissions and access."
	nothingInChatText  = "❌ No music collected yet for this chat. Please send or forward music files there so the bot can start collecting them."
	statusEmptyText    = "No music files collected yet. Use /collect to start."
	clearedText        = "🧹 Music file collection has been cleared."
	nothingToAnalyze   = "❌ No music to analyze. Please use /collect first."
	analyzingText      = "🧠 Analyzing music... Please wait..."
	nettestPendingText = "🔄 Testing network connection..."
	unknownCommandText = "Unknown command. Use /help to see all available commands."
)

func analyzeButtonText(count int) string {
	return fmt.Sprintf("📊 Analyze %d Music Files", count)
}

func analyzeCallbackData(chatID int64) string {
	return fmt.Sprintf("%s:%d", analyzeCallbackPrefix, chatID)
}

func collectFoundText(count int, target string) string {
	return fmt.Sprintf("✅ Found %d music files in chat %s.", count, target)
}

func statusText(total, unique int) string {
	return fmt.Sprintf("📑 Collection Status:\nTotal music files: %d\nUnique music files: %d", total, unique)
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
