package core

import "github.com/Rorical/RoriChat/internal/models"

// View is the rendering surface driven by ChatController. Implementations
// must be safe to call from the controller's goroutine.
type View interface {
	SetInput(value string)
	SelectModel(model string)
	SetModels(available []string, selected string)
	FocusInput()
	Flash(target models.FeedbackTarget, feedback models.Feedback)
	SetStatus(status models.Status)
	SetSendEnabled(enabled bool)
	SetLoading(loading bool)
	SetCharCount(count int, level models.CountLevel)
	ShowError(message string)
	HideError()
}
