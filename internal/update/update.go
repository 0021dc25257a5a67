package update

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriChat/internal/eventbus"
	"github.com/Rorical/RoriChat/internal/models"
)

const (
	// ScrollDelay lets the viewport pick up new content before scrolling.
	ScrollDelay = 100 * time.Millisecond
	// FlashDuration is how long success/error feedback stays on a control.
	FlashDuration = 600 * time.Millisecond

	tickInterval = 120 * time.Millisecond
	pulseFrames  = 20
)

// HandleKeyMsg handles keys that drive the widget. It reports false for keys
// that belong to the input box.
func HandleKeyMsg(appModel *models.AppModel, keyMsg tea.KeyMsg, input string, eb *eventbus.EventBus) (tea.Cmd, bool) {
	if keyMsg.String() == "ctrl+c" {
		return tea.Quit, true
	}

	if appModel.ErrorVisible {
		switch keyMsg.String() {
		case "r", "ctrl+r":
			if sendToCore(appModel, eb, eventbus.RetryEvent{}) {
				appModel.ErrorVisible = false
				appModel.SendDisabled = true
			}
		case "esc", "enter", "d":
			sendToCore(appModel, eb, eventbus.DismissErrorEvent{})
		}
		// The dialog is modal.
		return nil, true
	}

	switch keyMsg.String() {
	case "enter":
		if appModel.SendDisabled {
			return nil, true
		}
		// Stays disabled until the core hands the control back.
		if sendToCore(appModel, eb, eventbus.SendEvent{Input: input, Model: appModel.SelectedModel()}) {
			appModel.SendDisabled = true
		}
		return nil, true
	case "tab", "shift+tab":
		if len(appModel.Models) < 2 {
			return nil, true
		}
		step := 1
		if keyMsg.String() == "shift+tab" {
			step = len(appModel.Models) - 1
		}
		appModel.ModelIndex = (appModel.ModelIndex + step) % len(appModel.Models)
		sendToCore(appModel, eb, eventbus.ModelSelectedEvent{Model: appModel.SelectedModel()})
		return nil, true
	}
	return nil, false
}

// HandleInputChanged forwards a new input box value to the core.
func HandleInputChanged(appModel *models.AppModel, value string, eb *eventbus.EventBus) {
	sendToCore(appModel, eb, eventbus.InputChangedEvent{Value: value})
}

// HandleStartup tells the core the UI is ready.
func HandleStartup(appModel *models.AppModel, eb *eventbus.EventBus) {
	sendToCore(appModel, eb, eventbus.StartupEvent{})
}

func sendToCore(appModel *models.AppModel, eb *eventbus.EventBus, event eventbus.UIEvent) bool {
	if err := eb.SendToCore(event); err != nil {
		appModel.Notice = "Error sending event: " + err.Error()
		return false
	}
	appModel.Notice = ""
	return true
}

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// ScrollMsg asks the transcript viewport to jump to the bottom.
type ScrollMsg struct{}

// FlashExpiredMsg clears a flash unless a newer one replaced it.
type FlashExpiredMsg struct {
	Target models.FeedbackTarget
	Seq    int
}

// HandleCoreEvent processes events from the core. Input value and focus live
// in the input widget and are applied by the caller.
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg CoreEventMsg) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.TranscriptEvent:
		appModel.Messages = event.Messages
	case eventbus.ScrollEvent:
		return tea.Tick(ScrollDelay, func(time.Time) tea.Msg {
			return ScrollMsg{}
		})
	case eventbus.ModelsEvent:
		appModel.Models = append([]string(nil), event.Models...)
		appModel.ModelIndex = 0
		appModel.SelectModel(event.Selected)
	case eventbus.ModelEvent:
		appModel.SelectModel(event.Model)
	case eventbus.FeedbackEvent:
		return flash(appModel, event.Target, event.Feedback)
	case eventbus.StatusEvent:
		appModel.Status = event.Status
	case eventbus.SendEnabledEvent:
		appModel.SendDisabled = !event.Enabled
	case eventbus.LoadingEvent:
		appModel.Loading = event.Loading
		if !event.Loading {
			appModel.PulseFrame = 0
		}
	case eventbus.ErrorEvent:
		appModel.ErrorVisible = event.Visible
		if event.Visible {
			appModel.ErrorMessage = event.Message
		}
	case eventbus.CharCountEvent:
		appModel.CharCount = event.Count
		appModel.CountLevel = event.Level
	}

	return nil
}

func flash(appModel *models.AppModel, target models.FeedbackTarget, feedback models.Feedback) tea.Cmd {
	if appModel.Flashes == nil {
		appModel.Flashes = make(map[models.FeedbackTarget]models.Feedback)
	}
	if appModel.FlashSeq == nil {
		appModel.FlashSeq = make(map[models.FeedbackTarget]int)
	}
	appModel.Flashes[target] = feedback
	appModel.FlashSeq[target]++
	seq := appModel.FlashSeq[target]

	return tea.Tick(FlashDuration, func(time.Time) tea.Msg {
		return FlashExpiredMsg{Target: target, Seq: seq}
	})
}

// HandleFlashExpired removes a flash that has run its course.
func HandleFlashExpired(appModel *models.AppModel, msg FlashExpiredMsg) {
	if appModel.FlashSeq[msg.Target] == msg.Seq {
		delete(appModel.Flashes, msg.Target)
	}
}

type TickMsg time.Time

func TickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
}

func HandleTickMsg(appModel *models.AppModel) tea.Cmd {
	// Only handle UI animations - progress pulse
	if appModel.Loading {
		appModel.PulseFrame = (appModel.PulseFrame + 1) % pulseFrames
	}
	return TickCmd()
}

// PulsePercent maps the pulse frame onto a 0..1 triangle wave.
func PulsePercent(frame int) float64 {
	half := pulseFrames / 2
	frame %= pulseFrames
	if frame > half {
		frame = pulseFrames - frame
	}
	return float64(frame) / float64(half)
}
