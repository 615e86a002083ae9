package voxstock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"voxstock/internal/bootstrap"
	"voxstock/internal/catalog"
	"voxstock/internal/config"
	"voxstock/internal/domain"
	"voxstock/internal/ports"
	"voxstock/internal/usecase"
)

const (
	eventSession     = "voxstock:session"
	eventTick        = "voxstock:tick"
	eventReview      = "voxstock:review"
	eventReviewDone  = "voxstock:review:closed"
	eventData        = "voxstock:data"
	eventNotice      = "voxstock:notice"
	eventNoticeClear = "voxstock:notice:clear"
	eventError       = "voxstock:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	controller *usecase.CaptureController
	workflow   *usecase.ConfirmationWorkflow
	backend    ports.InventoryBackend
	catalog    *catalog.Cache
	notifier   *usecase.Notifier
	cfg        config.Config
	bootErr    error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller
	a.workflow = services.Workflow
	a.backend = services.Backend
	a.catalog = services.Catalog
	a.notifier = usecase.NewNotifier(a, services.Config.Notice.Duration)
	a.CaptureStateChanged(a.controller.Status(), domain.ReasonAwaitingActivation)
}

func (a *App) shutdown(ctx context.Context) {
	if a.controller != nil {
		a.controller.Shutdown()
	}
	if a.notifier != nil {
		a.notifier.Stop()
	}
}

// Activate requests microphone access. Must be called from a user gesture
// before the first recording.
func (a *App) Activate() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	return a.controller.Activate(a.ctx)
}

// StartRecording begins capturing a voice command.
func (a *App) StartRecording() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	return a.controller.StartRecording(a.ctx)
}

// StopRecording ends the capture, submits the audio and returns the parsed
// command ready for review.
func (a *App) StopRecording() (domain.ReviewPresentation, error) {
	if err := a.requireReady(); err != nil {
		return domain.ReviewPresentation{}, err
	}
	return a.controller.StopRecording(a.ctx)
}

// UpdateDraftLine mirrors a user edit of one confirmation form line.
func (a *App) UpdateDraftLine(index int, line domain.DraftLine) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.workflow.UpdateLine(index, line)
}

// ConfirmCommand submits the reviewed command to the inventory service.
func (a *App) ConfirmCommand() (domain.SubmitResult, error) {
	if err := a.requireReady(); err != nil {
		return domain.SubmitResult{}, err
	}
	return a.workflow.Confirm(a.ctx)
}

// CancelReview discards the pending command without submitting anything.
func (a *App) CancelReview() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.workflow.Cancel(); err != nil {
		if errors.Is(err, usecase.ErrNoPendingCommand) {
			return nil
		}
		return err
	}
	return nil
}

// GetProducts fetches the product list and inventory stats. Each successful
// fetch refreshes the price cache used for sale auto-fill.
func (a *App) GetProducts() (domain.ProductListing, error) {
	if err := a.requireReady(); err != nil {
		return domain.ProductListing{}, err
	}
	products, err := a.backend.ListProducts(a.ctx)
	if err != nil {
		return domain.ProductListing{}, err
	}
	a.catalog.Update(products)
	return domain.NewProductListing(products), nil
}

// GetSales fetches the sale history.
func (a *App) GetSales() ([]domain.Sale, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.backend.ListSales(a.ctx)
}

// GetCategories returns the category vocabulary for the confirmation form.
func (a *App) GetCategories() []string {
	return domain.Categories()
}

// GetUnits returns the unit vocabulary for the confirmation form.
func (a *App) GetUnits() []string {
	return domain.Units()
}

// GetStatus returns the current capture and review status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		status := domain.Status{Activation: domain.ActivationNone, Recording: domain.RecordingIdle, Review: domain.ReviewIdle}
		if a.bootErr != nil {
			status.Message = a.bootErr.Error()
		}
		return status
	}
	return a.controller.Status()
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"backendURL":       a.cfg.Backend.BaseURL,
		"recorder":         a.cfg.Audio.RecorderCommand,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// CaptureStateChanged emits capture lifecycle updates to the frontend.
func (a *App) CaptureStateChanged(status domain.Status, reason domain.StateReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventSession, map[string]any{
		"status":  status,
		"reason":  string(reason),
		"message": stateReasonMessage(reason),
	})
	a.notify(stateReasonMessage(reason))
}

// RecordingTick emits the elapsed recording time for the live counter.
func (a *App) RecordingTick(elapsed time.Duration) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventTick, map[string]any{
		"elapsedMs": elapsed.Milliseconds(),
	})
}

// CommandReady emits the parsed command and its editable draft lines.
func (a *App) CommandReady(review domain.ReviewPresentation) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventReview, review)
}

// ReviewClosed emits the outcome that ended the review.
func (a *App) ReviewClosed(reason domain.StateReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventReviewDone, map[string]string{
		"reason":  string(reason),
		"message": stateReasonMessage(reason),
	})
	a.notify(stateReasonMessage(reason))
}

// DataChanged tells the frontend which list view is stale.
func (a *App) DataChanged(scope domain.RefreshScope) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventData, map[string]string{"scope": string(scope)})
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
	if code == domain.ErrorCodeValidation {
		a.notify(detail)
		return
	}
	a.notify(errorMessage(code, detail))
}

// ShowNotice displays a transient status message.
func (a *App) ShowNotice(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventNotice, map[string]string{"text": text})
}

// ClearNotice dismisses the current status message.
func (a *App) ClearNotice() {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventNoticeClear, nil)
}

func (a *App) notify(text string) {
	if a.notifier == nil || text == "" {
		return
	}
	a.notifier.Notify(text)
}

func stateReasonMessage(reason domain.StateReason) string {
	switch reason {
	case domain.ReasonAwaitingActivation:
		return "Tap the button to enable the microphone"
	case domain.ReasonMicReady:
		return "Microphone ready. Hold to record"
	case domain.ReasonMicDenied:
		return "Microphone access denied"
	case domain.ReasonMicUnavailable:
		return "No audio recorder available on this device"
	case domain.ReasonNoSupportedFormat:
		return "No supported audio format"
	case domain.ReasonRecordingStarted:
		return "Speak now..."
	case domain.ReasonRecordingTooShort:
		return "Recording too short. Try again"
	case domain.ReasonUploading:
		return "Analyzing your command..."
	case domain.ReasonCommandNotUnderstood:
		return "Command not understood. Try again"
	case domain.ReasonConnectionFailed:
		return "Could not reach the inventory service"
	case domain.ReasonReviewCancelled:
		return "Command cancelled"
	case domain.ReasonStockUpdated:
		return "Stock updated"
	case domain.ReasonSaleRecorded:
		return "Sale recorded"
	case domain.ReasonSubmissionFailed:
		return "Submission failed"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeActivation:
		return "Microphone activation failed"
	case domain.ErrorCodeEncoding:
		return "Audio encoding unavailable"
	case domain.ErrorCodeAudioStop:
		return "Audio stop issue"
	case domain.ErrorCodeCapture:
		return "Audio capture issue"
	case domain.ErrorCodeUpload:
		return "Could not send the command"
	case domain.ErrorCodeSubmission:
		return "Submission failed"
	case domain.ErrorCodeValidation:
		return "Check the highlighted line"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
