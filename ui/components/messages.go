package components

import (
	"strings"

	"github.com/Rorical/RoriChat/internal/markup"
	"github.com/Rorical/RoriChat/internal/models"
	"github.com/Rorical/RoriChat/ui/styles"
)

// TypingText is shown in place of the typing indicator entry.
const TypingText = "typing..."

// RenderMessages renders the transcript. Entry markup is turned back into
// terminal text.
func RenderMessages(messages []models.Message, width int) string {
	var b strings.Builder

	userStyle := styles.UserStyle()
	botStyle := styles.BotStyle()
	typingStyle := styles.TypingStyle()
	if width > 8 {
		userStyle = userStyle.Width(width - 6)
		botStyle = botStyle.Width(width - 6)
	}

	for _, msg := range messages {
		if msg.Typing {
			b.WriteString(typingStyle.Render("Bot is "+TypingText) + "\n\n")
			continue
		}
		text := markup.ToText(msg.Content)
		switch msg.Role {
		case models.User:
			b.WriteString(userStyle.Render("You: "+text) + "\n\n")
		case models.Bot:
			b.WriteString(botStyle.Render("Bot: "+text) + "\n\n")
		}
	}

	return b.String()
}
