package models

// Status is the widget-wide request state shown in the status indicator.
type Status int

const (
	StatusReady Status = iota
	StatusSending
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusSending:
		return "sending"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Label is the human readable text for the status indicator.
func (s Status) Label() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusSending:
		return "Sending..."
	case StatusError:
		return "Error"
	default:
		return s.String()
	}
}

// FeedbackTarget names a control that can flash visual feedback.
type FeedbackTarget int

const (
	TargetInput FeedbackTarget = iota
	TargetSend
	TargetModel
)

type Feedback int

const (
	FeedbackNone Feedback = iota
	FeedbackSuccess
	FeedbackError
)

// CountLevel grades the character counter of the input box.
type CountLevel int

const (
	CountNormal CountLevel = iota
	CountWarn
	CountDanger
	CountOver
)

// AppModel represents the UI state - only local UI concerns
type AppModel struct {
	Messages     []Message                   // Transcript snapshot pushed by the core
	Status       Status                      // Status indicator
	Notice       string                      // Transient UI-side notice (event bus failures)
	Loading      bool                        // Spinner and progress pulse visible
	PulseFrame   int                         // Animation counter for the progress pulse
	SendDisabled bool                        // Send control disabled while a request is in flight
	ErrorVisible bool                        // Error modal shown
	ErrorMessage string                      // Classified message inside the error modal
	CharCount    int                         // Characters in the input box
	CountLevel   CountLevel                  // Counter colour grade
	Models       []string                    // Selectable model identifiers
	ModelIndex   int                         // Index into Models
	Flashes      map[FeedbackTarget]Feedback // Active visual feedback per control
	FlashSeq     map[FeedbackTarget]int      // Generation of the latest flash per control
	Width        int                         // Terminal width
	Height       int                         // Terminal height
}

// SelectedModel returns the model currently chosen in the selector.
func (m *AppModel) SelectedModel() string {
	if m.ModelIndex < 0 || m.ModelIndex >= len(m.Models) {
		return ""
	}
	return m.Models[m.ModelIndex]
}

// SelectModel moves the selector to model, appending it when unknown.
func (m *AppModel) SelectModel(model string) {
	if model == "" {
		return
	}
	for i, name := range m.Models {
		if name == model {
			m.ModelIndex = i
			return
		}
	}
	m.Models = append(m.Models, model)
	m.ModelIndex = len(m.Models) - 1
}
