package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rorical/RoriChat/internal/markup"
	"github.com/Rorical/RoriChat/internal/models"
)

func TestRenderMessages(t *testing.T) {
	out := RenderMessages([]models.Message{
		{Role: models.User, Content: markup.Format("a < b")},
		{Role: models.Bot, Content: markup.Format("Hi there")},
		{Role: models.Bot, Typing: true},
	}, 0)

	assert.Contains(t, out, "You: a < b")
	assert.Contains(t, out, "Bot: Hi there")
	assert.Contains(t, out, TypingText)
	assert.NotContains(t, out, "&lt;")
}

func TestRenderStatus(t *testing.T) {
	out := RenderStatus(models.StatusSending, true, "*", "bus full", 0)

	assert.Contains(t, out, "Sending...")
	assert.Contains(t, out, "*")
	assert.Contains(t, out, "bus full")
}

func TestRenderControls(t *testing.T) {
	out := RenderControls(models.AppModel{
		Models:     []string{"gpt-4"},
		CharCount:  12,
		CountLevel: models.CountNormal,
	}, 80)

	assert.Contains(t, out, "gpt-4")
	assert.Contains(t, out, "12/2000")
	assert.Contains(t, out, "Send")
}

func TestRenderErrorModal(t *testing.T) {
	out := RenderErrorModal("Rate limited", 80, 20)

	assert.Contains(t, out, "Rate limited")
	assert.Contains(t, out, "retry")
}
