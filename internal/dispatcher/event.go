package dispatcher

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Rorical/RoriChat/internal/chatapi"
	"github.com/Rorical/RoriChat/internal/core"
	"github.com/Rorical/RoriChat/internal/eventbus"
	"github.com/Rorical/RoriChat/internal/update"
)

// Controller is the core side of the widget driven by UI events.
type Controller interface {
	Init(ctx context.Context)
	Send(ctx context.Context, input, model string) error
	Retry(ctx context.Context) error
	DismissError()
	InputChanged(value string)
	SelectModel(model string)
}

// EventDispatcher handles routing events between core and UI
type EventDispatcher struct {
	eventBus   *eventbus.EventBus
	controller Controller
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	startOnce  sync.Once
	done       chan struct{}
}

func NewEventDispatcher(eventBus *eventbus.EventBus, controller Controller, logger *zap.Logger) *EventDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &EventDispatcher{
		eventBus:   eventBus,
		controller: controller,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Start consumes UI events on a single goroutine, so the controller sees them
// one at a time in arrival order.
func (ed *EventDispatcher) Start() {
	ed.startOnce.Do(func() {
		go ed.loop()
	})
}

// Stop cancels any in-flight request and waits for the loop to exit.
func (ed *EventDispatcher) Stop() {
	ed.cancel()
	// Never started: nothing will close done.
	ed.startOnce.Do(func() {
		close(ed.done)
	})
	<-ed.done
}

func (ed *EventDispatcher) GetEventBus() *eventbus.EventBus {
	return ed.eventBus
}

// ListenForCoreEvents waits for the next core event and hands it to Bubble Tea.
// It must be re-issued after every CoreEventMsg.
func (ed *EventDispatcher) ListenForCoreEvents() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ed.eventBus.CoreToUI()
		if !ok {
			return nil
		}
		return update.CoreEventMsg{Event: event}
	}
}

func (ed *EventDispatcher) loop() {
	defer close(ed.done)
	for {
		select {
		case <-ed.ctx.Done():
			return
		case event, ok := <-ed.eventBus.UIToCore():
			if !ok {
				return
			}
			ed.handle(event)
		}
	}
}

func (ed *EventDispatcher) handle(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.StartupEvent:
		ed.controller.Init(ed.ctx)
	case eventbus.SendEvent:
		ed.logResult("send", ed.controller.Send(ed.ctx, e.Input, e.Model))
	case eventbus.RetryEvent:
		ed.logResult("retry", ed.controller.Retry(ed.ctx))
	case eventbus.DismissErrorEvent:
		ed.controller.DismissError()
	case eventbus.InputChangedEvent:
		ed.controller.InputChanged(e.Value)
	case eventbus.ModelSelectedEvent:
		ed.controller.SelectModel(e.Model)
	default:
		ed.logger.Warn("unhandled UI event", zap.Any("event", event))
	}
}

// logResult logs controller errors. They have already been shown to the user.
func (ed *EventDispatcher) logResult(op string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, core.ErrEmptyMessage), errors.Is(err, core.ErrRequestInFlight), chatapi.IsCanceled(err):
		ed.logger.Debug(op+" rejected", zap.Error(err))
	default:
		ed.logger.Info(op+" failed", zap.Error(err))
	}
}
