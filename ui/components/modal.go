package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/RoriChat/ui/styles"
)

// RenderErrorModal renders the error dialog centred in the given area.
func RenderErrorModal(message string, width, height int) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle().Render("Something went wrong"),
		"",
		message,
		"",
		styles.HintStyle().Render("[r] retry   [esc] close"),
	)
	dialog := styles.ModalStyle(width).Render(body)
	if width <= 0 || height <= 0 {
		return dialog
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, dialog)
}
