package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Rorical/RoriChat/internal/chatapi"
	"github.com/Rorical/RoriChat/internal/config"
	"github.com/Rorical/RoriChat/internal/core"
	"github.com/Rorical/RoriChat/internal/dispatcher"
	"github.com/Rorical/RoriChat/internal/eventbus"
	"github.com/Rorical/RoriChat/internal/markup"
	"github.com/Rorical/RoriChat/internal/models"
	"github.com/Rorical/RoriChat/internal/transcript"
)

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	logger     *zap.Logger
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	controller *core.ChatController
	model      *AppModel
}

type Option func(*settings)

type settings struct {
	endpoint      string
	reducedMotion *bool
}

// WithEndpoint overrides the profile's chat endpoint.
func WithEndpoint(endpoint string) Option {
	return func(s *settings) {
		s.endpoint = endpoint
	}
}

// WithReducedMotion overrides the reduced-motion preference.
func WithReducedMotion(enabled bool) Option {
	return func(s *settings) {
		s.reducedMotion = &enabled
	}
}

func NewApplication(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Application, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := settings{endpoint: cfg.GetEndpoint()}
	for _, opt := range opts {
		opt(&s)
	}
	reducedMotion := cfg.ReducedMotion
	if s.reducedMotion != nil {
		enabled := *s.reducedMotion
		reducedMotion = func() bool { return enabled }
	}

	// Create event bus
	eb := eventbus.NewEventBus()
	eb.SetErrorCallback(func(err eventbus.EventBusError) {
		logger.Warn("event bus error", zap.String("operation", err.Operation), zap.Error(err.Err))
	})
	view := newBusView(eb, logger)

	client := chatapi.NewClient(s.endpoint,
		chatapi.WithTimeout(cfg.GetTimeout()),
		chatapi.WithLogger(logger),
	)
	typewriter := markup.NewTypewriter(
		markup.WithReducedMotion(reducedMotion),
		markup.WithScroll(view.ScrollToBottom),
	)
	tr := transcript.New(typewriter,
		transcript.WithObserver(view.RenderTranscript),
		transcript.WithScroller(view.ScrollToBottom),
	)
	controller := core.NewChatController(client, view, tr,
		core.WithLogger(logger),
		core.WithModels(cfg.GetModels(), cfg.GetModel()),
	)

	// Create dispatcher
	disp := dispatcher.NewEventDispatcher(eb, controller, logger)

	logger.Info("application created",
		zap.String("profile", cfg.ActiveProfile),
		zap.String("endpoint", s.endpoint))

	return &Application{
		config:     cfg,
		logger:     logger,
		eventBus:   eb,
		dispatcher: disp,
		controller: controller,
		model:      newAppModel(disp, createInitialAppModel(cfg)),
	}, nil
}

func (app *Application) Start() error {
	// Start background services
	app.dispatcher.Start()

	// Run UI
	p := tea.NewProgram(app.model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()

	return err
}

func (app *Application) Stop() {
	app.dispatcher.Stop()
	app.eventBus.Close()
	_ = app.logger.Sync()
}

func createInitialAppModel(cfg *config.Config) models.AppModel {
	// No initial messages in UI - they come from core as single source of truth
	m := models.AppModel{
		Messages: make([]models.Message, 0),
		Status:   models.StatusReady,
		Models:   cfg.GetModels(),
		Flashes:  make(map[models.FeedbackTarget]models.Feedback),
		FlashSeq: make(map[models.FeedbackTarget]int),
	}
	m.SelectModel(cfg.GetModel())
	return m
}
