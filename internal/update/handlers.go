package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriChat/internal/models"
)

// HandleUpdate handles everything except keys, which need the input box value
// and go through HandleKeyMsg.
func HandleUpdate(appModel *models.AppModel, msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		HandleWindowSizeMsg(appModel, msg)
		return nil
	case TickMsg:
		return HandleTickMsg(appModel)
	case CoreEventMsg:
		return HandleCoreEvent(appModel, msg)
	case FlashExpiredMsg:
		HandleFlashExpired(appModel, msg)
		return nil
	}
	return nil
}
