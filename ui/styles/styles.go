package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/RoriChat/internal/models"
)

var (
	colorAccent  = lipgloss.Color("62")
	colorUser    = lipgloss.Color("39")
	colorBot     = lipgloss.Color("214")
	colorMuted   = lipgloss.Color("241")
	colorSuccess = lipgloss.Color("42")
	colorWarn    = lipgloss.Color("214")
	colorDanger  = lipgloss.Color("202")
	colorError   = lipgloss.Color("196")
)

// FeedbackColor is the border colour for a flashing control.
func FeedbackColor(feedback models.Feedback) lipgloss.Color {
	switch feedback {
	case models.FeedbackSuccess:
		return colorSuccess
	case models.FeedbackError:
		return colorError
	default:
		return colorAccent
	}
}

func InputStyle(width int, feedback models.Feedback) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(FeedbackColor(feedback)).
		Padding(0, 1).
		Width(max(width-4, 0))
}

func StatusStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(colorMuted).
		Background(lipgloss.Color("235")).
		Padding(0, 1).
		Width(width)
}

// StatusDotStyle colours the status indicator.
func StatusDotStyle(status models.Status) lipgloss.Style {
	color := colorSuccess
	switch status {
	case models.StatusSending:
		color = colorWarn
	case models.StatusError:
		color = colorError
	}
	return lipgloss.NewStyle().Foreground(color).Background(lipgloss.Color("235"))
}

func UserStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(colorUser).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(colorUser).
		Padding(0, 1).
		MarginLeft(2)
}

func BotStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(colorBot).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(colorBot).
		Padding(0, 1).
		MarginLeft(2)
}

func TypingStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(colorMuted).
		Italic(true).
		Padding(0, 2)
}

// CounterStyle colours the character counter by level.
func CounterStyle(level models.CountLevel) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(colorMuted)
	switch level {
	case models.CountWarn:
		style = style.Foreground(colorWarn)
	case models.CountDanger:
		style = style.Foreground(colorDanger)
	case models.CountOver:
		style = style.Foreground(colorError).Bold(true)
	}
	return style
}

func ModelStyle(feedback models.Feedback) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(FeedbackColor(feedback)).
		Bold(feedback != models.FeedbackNone)
}

func SendStyle(disabled bool, feedback models.Feedback) lipgloss.Style {
	style := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(lipgloss.Color("230")).
		Background(FeedbackColor(feedback))
	if disabled {
		style = style.Foreground(colorMuted).Background(lipgloss.Color("237"))
	}
	return style
}

func ModalStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorError).
		Padding(1, 2).
		Width(min(max(width-10, 20), 60))
}

func ModalTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError).Bold(true)
}

func HintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorMuted)
}

func NoticeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorDanger).Padding(0, 1)
}
