package app

import (
	"go.uber.org/zap"

	"github.com/Rorical/RoriChat/internal/eventbus"
	"github.com/Rorical/RoriChat/internal/models"
)

// busView implements core.View by pushing core events to the UI. It also
// serves as the transcript's observer and scroller.
type busView struct {
	eventBus *eventbus.EventBus
	logger   *zap.Logger
}

func newBusView(eb *eventbus.EventBus, logger *zap.Logger) *busView {
	return &busView{eventBus: eb, logger: logger}
}

func (v *busView) send(event eventbus.CoreEvent) {
	if err := v.eventBus.SendToUI(event); err != nil {
		v.logger.Warn("dropped UI event", zap.String("event", eventName(event)), zap.Error(err))
	}
}

func (v *busView) SetInput(value string) {
	v.send(eventbus.InputEvent{Value: value})
}

func (v *busView) SelectModel(model string) {
	v.send(eventbus.ModelEvent{Model: model})
}

func (v *busView) SetModels(available []string, selected string) {
	v.send(eventbus.ModelsEvent{Models: available, Selected: selected})
}

func (v *busView) FocusInput() {
	v.send(eventbus.FocusEvent{})
}

func (v *busView) Flash(target models.FeedbackTarget, feedback models.Feedback) {
	v.send(eventbus.FeedbackEvent{Target: target, Feedback: feedback})
}

func (v *busView) SetStatus(status models.Status) {
	v.send(eventbus.StatusEvent{Status: status})
}

func (v *busView) SetSendEnabled(enabled bool) {
	v.send(eventbus.SendEnabledEvent{Enabled: enabled})
}

func (v *busView) SetLoading(loading bool) {
	v.send(eventbus.LoadingEvent{Loading: loading})
}

func (v *busView) SetCharCount(count int, level models.CountLevel) {
	v.send(eventbus.CharCountEvent{Count: count, Level: level})
}

func (v *busView) ShowError(message string) {
	v.send(eventbus.ErrorEvent{Message: message, Visible: true})
}

func (v *busView) HideError() {
	v.send(eventbus.ErrorEvent{})
}

// RenderTranscript is the transcript observer.
func (v *busView) RenderTranscript(messages []models.Message) {
	v.send(eventbus.TranscriptEvent{Messages: messages})
}

// ScrollToBottom is the transcript scroller.
func (v *busView) ScrollToBottom() {
	v.send(eventbus.ScrollEvent{})
}

func eventName(event eventbus.CoreEvent) string {
	switch event.(type) {
	case eventbus.TranscriptEvent:
		return "transcript"
	case eventbus.ScrollEvent:
		return "scroll"
	case eventbus.ErrorEvent:
		return "error"
	case eventbus.StatusEvent:
		return "status"
	default:
		return "control"
	}
}
