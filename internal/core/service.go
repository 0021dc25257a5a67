package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Rorical/RoriChat/internal/chatapi"
	"github.com/Rorical/RoriChat/internal/models"
	"github.com/Rorical/RoriChat/internal/transcript"
)

// Chatter sends one chat message to the backend.
type Chatter interface {
	Chat(ctx context.Context, message, model string) (*chatapi.ChatResponse, error)
}

// ModelLister is implemented by clients that can ask the backend for its
// models.
type ModelLister interface {
	Models(ctx context.Context) ([]string, error)
}

// ChatController orchestrates input validation, the request lifecycle and the
// view's status, loading and error affordances.
type ChatController struct {
	client       Chatter
	view         View
	transcript   *transcript.Transcript
	state        *SessionState
	logger       *zap.Logger
	models       []string
	defaultModel string
}

type Option func(*ChatController)

func WithLogger(logger *zap.Logger) Option {
	return func(cc *ChatController) {
		if logger != nil {
			cc.logger = logger
		}
	}
}

// WithModels sets the model list used when the backend cannot provide one.
func WithModels(available []string, defaultModel string) Option {
	return func(cc *ChatController) {
		cc.models = slices.Clone(available)
		cc.defaultModel = defaultModel
	}
}

func NewChatController(client Chatter, view View, tr *transcript.Transcript, opts ...Option) *ChatController {
	cc := &ChatController{
		client:     client,
		view:       view,
		transcript: tr,
		state:      NewSessionState(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cc)
	}
	return cc
}

// Init puts the view into its initial state and loads the model list.
func (cc *ChatController) Init(ctx context.Context) {
	cc.view.SetStatus(models.StatusReady)
	cc.view.SetCharCount(0, models.CountNormal)
	cc.LoadModels(ctx)
}

// LoadModels asks the backend for its models, falling back to the configured
// list. The default model is preselected when present.
func (cc *ChatController) LoadModels(ctx context.Context) []string {
	available := cc.models
	if lister, ok := cc.client.(ModelLister); ok {
		fetched, err := lister.Models(ctx)
		switch {
		case err != nil:
			cc.logger.Warn("failed to load models, using configured list", zap.Error(err))
		case len(fetched) == 0:
			cc.logger.Warn("backend returned no models, using configured list")
		default:
			available = fetched
		}
	}

	selected := cc.defaultModel
	if !slices.Contains(available, selected) && len(available) > 0 {
		selected = available[0]
	}

	cc.logger.Debug("models loaded", zap.Strings("models", available), zap.String("selected", selected))
	cc.view.SetModels(available, selected)
	return available
}

// Send validates input and, when it is acceptable, runs one request to
// completion: user entry, loading state, backend call, then either the
// animated reply or the error dialog. Failures of the request itself are
// shown to the user and also returned for logging.
func (cc *ChatController) Send(ctx context.Context, input, model string) error {
	if cc.state.IsInFlight() {
		cc.logger.Debug("send ignored, request in flight")
		return ErrRequestInFlight
	}

	message, err := ValidateMessage(input)
	switch {
	case errors.Is(err, ErrEmptyMessage):
		// The UI disables sending as soon as it submits.
		cc.view.SetSendEnabled(true)
		cc.view.FocusInput()
		cc.view.Flash(models.TargetInput, models.FeedbackError)
		return err
	case errors.Is(err, ErrMessageTooLong):
		cc.view.SetSendEnabled(true)
		cc.showError(MsgTooLong)
		return err
	}

	if err := cc.state.BeginRequest(message, model); err != nil {
		return err
	}
	defer cc.finishRequest()

	cc.logger.Info("sending message",
		zap.String("model", model),
		zap.Int("length", utf8.RuneCountInString(message)))

	cc.transcript.Append(models.User, message)
	cc.view.SetInput("")
	cc.view.SetCharCount(0, models.CountNormal)
	cc.view.SetStatus(models.StatusSending)
	cc.view.SetSendEnabled(false)
	cc.view.SetLoading(true)
	typingID := cc.transcript.ShowTyping()

	resp, err := cc.client.Chat(ctx, message, model)
	cc.transcript.RemoveTyping(typingID)

	if err != nil && chatapi.IsCanceled(err) {
		cc.logger.Debug("chat request canceled", zap.String("model", model))
		cc.state.FinishCanceled()
		cc.view.SetStatus(models.StatusReady)
		return fmt.Errorf("chat request: %w", err)
	}
	if err != nil {
		cc.logger.Warn("chat request failed", zap.String("model", model), zap.Error(err))
		cc.state.FinishWithError(err)
		cc.view.SetStatus(models.StatusError)
		cc.showError(chatapi.Classify(err))
		return fmt.Errorf("chat request: %w", err)
	}

	cc.transcript.AppendAnimated(ctx, models.Bot, resp.Response)
	cc.state.FinishWithSuccess()
	cc.view.SetStatus(models.StatusReady)
	cc.view.Flash(models.TargetSend, models.FeedbackSuccess)
	return nil
}

// Retry dismisses the error dialog and sends the last message again through
// the full Send path.
func (cc *ChatController) Retry(ctx context.Context) error {
	if cc.state.IsInFlight() {
		cc.logger.Debug("retry ignored, request in flight")
		return ErrRequestInFlight
	}

	cc.view.HideError()

	message, model, ok := cc.state.LastRequest()
	if !ok {
		cc.view.SetSendEnabled(true)
		return nil
	}

	cc.view.SetInput(message)
	cc.view.SelectModel(model)
	cc.InputChanged(message)

	return cc.Send(ctx, message, model)
}

// DismissError hides the error dialog.
func (cc *ChatController) DismissError() {
	cc.view.HideError()
}

// InputChanged updates the character counter.
func (cc *ChatController) InputChanged(value string) {
	count := utf8.RuneCountInString(value)
	cc.view.SetCharCount(count, CountLevelFor(count))
}

// SelectModel reacts to a new model choice. The status is left alone while a
// request is in flight.
func (cc *ChatController) SelectModel(model string) {
	cc.logger.Debug("model selected", zap.String("model", model))
	if cc.state.MarkReady() {
		cc.view.SetStatus(models.StatusReady)
	}
	cc.view.Flash(models.TargetModel, models.FeedbackSuccess)
}

func (cc *ChatController) Status() models.Status {
	return cc.state.Status()
}

func (cc *ChatController) IsInFlight() bool {
	return cc.state.IsInFlight()
}

// finishRequest restores the control surface whatever the outcome.
func (cc *ChatController) finishRequest() {
	cc.view.SetLoading(false)
	cc.view.SetSendEnabled(true)
	cc.view.FocusInput()
	cc.state.EndRequest()
}

func (cc *ChatController) showError(message string) {
	cc.view.ShowError(message)
	cc.view.Flash(models.TargetSend, models.FeedbackError)
	cc.view.Flash(models.TargetInput, models.FeedbackError)
}
