package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/RoriChat/internal/dispatcher"
	"github.com/Rorical/RoriChat/internal/eventbus"
	"github.com/Rorical/RoriChat/internal/models"
	"github.com/Rorical/RoriChat/internal/update"
	"github.com/Rorical/RoriChat/ui/components"
)

const inputHeight = 3

// AppModel is the Bubble Tea model. Widget state lives in appModel; the
// bubbles below only render it.
type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher
	input      textarea.Model
	viewport   viewport.Model
	spinner    spinner.Model
	progress   progress.Model
}

func newAppModel(disp *dispatcher.EventDispatcher, initial models.AppModel) *AppModel {
	input := textarea.New()
	input.Placeholder = "Type your message..."
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.SetHeight(inputHeight)
	input.KeyMap.InsertNewline = key.NewBinding(
		key.WithKeys("alt+enter", "ctrl+j"),
		key.WithHelp("alt+enter", "newline"),
	)
	input.Focus()

	return &AppModel{
		appModel:   initial,
		dispatcher: disp,
		input:      input,
		viewport:   viewport.New(0, 0),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("214"))),
		),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (m *AppModel) Init() tea.Cmd {
	update.HandleStartup(&m.appModel, m.dispatcher.GetEventBus())
	return tea.Batch(
		update.TickCmd(),
		textarea.Blink,
		m.dispatcher.ListenForCoreEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	eventBus := m.dispatcher.GetEventBus()

	switch msg := msg.(type) {
	case update.CoreEventMsg:
		// Handle core events and continue listening
		return m, m.handleCoreEvent(msg)

	case update.ScrollMsg:
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if !m.appModel.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		update.HandleWindowSizeMsg(&m.appModel, msg)
		m.resize()
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		if cmd, handled := update.HandleKeyMsg(&m.appModel, msg, m.input.Value(), eventBus); handled {
			return m, cmd
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if value := m.input.Value(); value != before {
			update.HandleInputChanged(&m.appModel, value, eventBus)
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, tea.Batch(cmd, update.HandleUpdate(&m.appModel, msg))
}

func (m *AppModel) handleCoreEvent(msg update.CoreEventMsg) tea.Cmd {
	cmds := []tea.Cmd{m.dispatcher.ListenForCoreEvents()}

	// Input value and focus belong to the textarea.
	switch event := msg.Event.(type) {
	case eventbus.InputEvent:
		m.input.SetValue(event.Value)
	case eventbus.FocusEvent:
		cmds = append(cmds, m.input.Focus())
	case eventbus.LoadingEvent:
		if event.Loading && !m.appModel.Loading {
			cmds = append(cmds, m.spinner.Tick)
		}
	}

	cmds = append(cmds, update.HandleCoreEvent(&m.appModel, msg))

	if _, ok := msg.Event.(eventbus.TranscriptEvent); ok {
		m.viewport.SetContent(components.RenderMessages(m.appModel.Messages, m.appModel.Width))
	}
	return tea.Batch(cmds...)
}

func (m *AppModel) resize() {
	width, height := m.appModel.Width, m.appModel.Height

	m.input.SetWidth(max(width-6, 10))
	m.progress.Width = max(width-2, 10)

	// input box (with border), controls, pulse and status lines
	chrome := inputHeight + 2 + 3
	m.viewport.Width = width
	m.viewport.Height = max(height-chrome, 3)
	m.viewport.SetContent(components.RenderMessages(m.appModel.Messages, width))
}

func (m *AppModel) View() string {
	if m.appModel.ErrorVisible {
		return components.RenderErrorModal(m.appModel.ErrorMessage, m.appModel.Width, m.appModel.Height)
	}

	var b strings.Builder

	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.appModel.Loading {
		b.WriteString(" " + m.progress.ViewAs(update.PulsePercent(m.appModel.PulseFrame)))
	}
	b.WriteString("\n")
	b.WriteString(components.RenderInput(m.input.View(), m.appModel.Flashes[models.TargetInput], m.appModel.Width))
	b.WriteString("\n")
	b.WriteString(components.RenderControls(m.appModel, m.appModel.Width))
	b.WriteString("\n")
	b.WriteString(components.RenderStatus(m.appModel.Status, m.appModel.Loading, m.spinner.View(), m.appModel.Notice, m.appModel.Width))

	return b.String()
}
