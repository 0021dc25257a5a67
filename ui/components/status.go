package components

import (
	"github.com/Rorical/RoriChat/internal/models"
	"github.com/Rorical/RoriChat/ui/styles"
)

// RenderStatus renders the status bar. spinnerView is shown while loading.
func RenderStatus(status models.Status, loading bool, spinnerView string, notice string, width int) string {
	statusContent := styles.StatusDotStyle(status).Render("●") + " " + status.Label()
	if loading {
		statusContent += " " + spinnerView
	}
	if notice != "" {
		statusContent += "  " + styles.NoticeStyle().Render(notice)
	}
	statusContent += "  " + styles.HintStyle().Render("enter send · alt+enter newline · tab model · ctrl+c quit")

	return styles.StatusStyle(width).Render(statusContent)
}
