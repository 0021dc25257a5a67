package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/RoriChat/internal/core"
	"github.com/Rorical/RoriChat/internal/models"
	"github.com/Rorical/RoriChat/ui/styles"
)

// RenderInput frames the input widget's view with its flash feedback.
func RenderInput(inputView string, feedback models.Feedback, width int) string {
	return styles.InputStyle(width, feedback).Render(inputView)
}

// RenderControls renders the model selector, character counter and send
// button row below the input.
func RenderControls(appModel models.AppModel, width int) string {
	model := appModel.SelectedModel()
	if model == "" {
		model = "(no model)"
	}
	selector := styles.ModelStyle(appModel.Flashes[models.TargetModel]).Render("◂ " + model + " ▸")
	counter := styles.CounterStyle(appModel.CountLevel).
		Render(fmt.Sprintf("%d/%d", appModel.CharCount, core.MaxMessageLength))
	send := styles.SendStyle(appModel.SendDisabled, appModel.Flashes[models.TargetSend]).Render("Send ⏎")

	left := lipgloss.JoinHorizontal(lipgloss.Top, " ", selector, "  ", counter)
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(send)-1, 1)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.NewStyle().Width(gap).Render(""), send)
}
