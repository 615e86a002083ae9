package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"voxstock/internal/domain"
	"voxstock/internal/ports"
)

var (
	ErrNotActivated      = errors.New("microphone is not activated")
	ErrCaptureBusy       = errors.New("a previous command is still processing")
	ErrReviewPending     = errors.New("a command is pending review")
	ErrRecordingTooShort = errors.New("recording too short to submit")
)

// CaptureConfig controls recording behavior.
type CaptureConfig struct {
	Audio           ports.AudioConfig
	ChunkInterval   time.Duration
	ReadBufferBytes int
	MinBlobBytes    int
}

// CaptureController orchestrates the microphone lifecycle: activation, one
// recording session at a time, blob assembly and the hand-off to the
// confirmation workflow. All cross-call state lives on the instance.
type CaptureController struct {
	audio   ports.AudioCapture
	backend ports.InventoryBackend
	review  *ConfirmationWorkflow
	events  ports.EventSink
	logger  *slog.Logger
	cfg     CaptureConfig

	mu         sync.Mutex
	activation domain.ActivationState
	recording  domain.RecordingState
	keepAlive  ports.KeepAlive
	current    *captureSession
}

func NewCaptureController(
	audio ports.AudioCapture,
	backend ports.InventoryBackend,
	review *ConfirmationWorkflow,
	events ports.EventSink,
	logger *slog.Logger,
	cfg CaptureConfig,
) *CaptureController {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ChunkInterval <= 0 {
		cfg.ChunkInterval = 250 * time.Millisecond
	}
	if cfg.ReadBufferBytes < 256 {
		cfg.ReadBufferBytes = 4096
	}
	if cfg.MinBlobBytes <= 0 {
		cfg.MinBlobBytes = 1024
	}
	return &CaptureController{
		audio:      audio,
		backend:    backend,
		review:     review,
		events:     events,
		logger:     logger,
		cfg:        cfg,
		activation: domain.ActivationNone,
		recording:  domain.RecordingIdle,
	}
}

// Activate requests microphone access and keeps the device warm for the rest
// of the process lifetime. Idempotent once granted; a denied activation can
// be retried with a fresh user gesture.
func (c *CaptureController) Activate(ctx context.Context) (domain.Status, error) {
	c.mu.Lock()
	if c.activation == domain.ActivationGranted {
		status := c.statusLocked()
		c.mu.Unlock()
		return status, nil
	}
	c.mu.Unlock()

	keepAlive, err := c.audio.Activate(ctx, c.cfg.Audio)
	if err != nil {
		c.mu.Lock()
		c.activation = domain.ActivationDenied
		c.mu.Unlock()

		reason := domain.ReasonMicDenied
		if errors.Is(err, ports.ErrRecorderUnavailable) {
			reason = domain.ReasonMicUnavailable
		}
		c.logger.Warn("microphone activation failed", "error", err)
		c.events.SessionError(domain.ErrorCodeActivation, err.Error())
		c.events.CaptureStateChanged(c.Status(), reason)
		return c.Status(), err
	}

	c.mu.Lock()
	c.activation = domain.ActivationGranted
	c.recording = domain.RecordingIdle
	c.keepAlive = keepAlive
	status := c.statusLocked()
	c.mu.Unlock()

	c.logger.Info("microphone activated")
	c.events.CaptureStateChanged(status, domain.ReasonMicReady)
	return status, nil
}

// StartRecording begins a new capture session. Starting while already
// recording is a no-op; starting while a command is pending review or a
// prior upload is unresolved is rejected.
func (c *CaptureController) StartRecording(ctx context.Context) (domain.Status, error) {
	if c.review.Pending() {
		return c.Status(), ErrReviewPending
	}

	c.mu.Lock()
	switch {
	case c.activation != domain.ActivationGranted:
		c.mu.Unlock()
		return c.Status(), ErrNotActivated
	case c.recording == domain.RecordingActive:
		status := c.statusLocked()
		c.mu.Unlock()
		return status, nil
	case c.recording != domain.RecordingIdle:
		c.mu.Unlock()
		return c.Status(), ErrCaptureBusy
	}
	c.mu.Unlock()

	enc, err := c.audio.NegotiateEncoding()
	if err != nil {
		c.events.SessionError(domain.ErrorCodeEncoding, err.Error())
		c.events.CaptureStateChanged(c.Status(), domain.ReasonNoSupportedFormat)
		return c.Status(), err
	}

	session, err := c.audio.Start(ctx, c.cfg.Audio, enc)
	if err != nil {
		c.events.SessionError(domain.ErrorCodeCapture, err.Error())
		return c.Status(), err
	}

	active := newCaptureSession(session, enc)

	c.mu.Lock()
	if c.recording != domain.RecordingIdle {
		// Lost the race to a concurrent start.
		c.mu.Unlock()
		_ = session.Stop()
		return c.Status(), nil
	}
	c.current = active
	c.recording = domain.RecordingActive
	status := c.statusLocked()
	c.mu.Unlock()

	go collectAudioChunks(session, active.chunks, c.cfg.ReadBufferBytes, c.events, active.readDone)
	go emitRecordingTicks(active.startedAt, c.cfg.ChunkInterval, c.events, active.tickStop, active.ticksDone)

	c.logger.Info("recording started", "mime_type", enc.MimeType)
	c.events.CaptureStateChanged(status, domain.ReasonRecordingStarted)
	return status, nil
}

// StopRecording finalizes the active session, assembles the blob and, if it
// carries enough audio, uploads it and opens the confirmation review. A stop
// without an active recording is a no-op.
func (c *CaptureController) StopRecording(ctx context.Context) (domain.ReviewPresentation, error) {
	c.mu.Lock()
	if c.recording != domain.RecordingActive || c.current == nil {
		c.mu.Unlock()
		return domain.ReviewPresentation{}, nil
	}
	active := c.current
	c.current = nil
	c.recording = domain.RecordingStopping
	status := c.statusLocked()
	c.mu.Unlock()

	c.events.CaptureStateChanged(status, domain.ReasonRecordingStopped)

	if err := active.drain(); err != nil {
		c.events.SessionError(domain.ErrorCodeAudioStop, "failed to stop audio capture cleanly")
	}

	blob := active.chunks.Assemble(active.encoding)
	if blob.Size() < c.cfg.MinBlobBytes {
		c.logger.Warn("recording discarded", "bytes", blob.Size(), "min_bytes", c.cfg.MinBlobBytes)
		c.finishCapture(domain.ReasonRecordingTooShort)
		return domain.ReviewPresentation{}, ErrRecordingTooShort
	}

	c.setRecording(domain.RecordingProcessing)
	c.events.CaptureStateChanged(c.Status(), domain.ReasonUploading)
	c.logger.Info("uploading command audio", "bytes", blob.Size(), "mime_type", blob.MimeType)

	cmd, err := c.backend.SubmitAudio(ctx, blob)
	if err != nil {
		if errors.Is(err, ports.ErrCommandNotUnderstood) {
			c.finishCapture(domain.ReasonCommandNotUnderstood)
		} else {
			c.events.SessionError(domain.ErrorCodeUpload, err.Error())
			c.finishCapture(domain.ReasonConnectionFailed)
		}
		return domain.ReviewPresentation{}, err
	}

	review := c.review.Present(cmd)
	c.finishCapture(domain.ReasonCommandReady)
	return review, nil
}

// Status returns the current capture and review status.
func (c *CaptureController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Shutdown releases the active session and the warm-hold device handle. Must
// run on teardown so the hardware lock is never leaked.
func (c *CaptureController) Shutdown() {
	c.mu.Lock()
	active := c.current
	keepAlive := c.keepAlive
	c.current = nil
	c.keepAlive = nil
	c.recording = domain.RecordingIdle
	c.mu.Unlock()

	if active != nil {
		_ = active.drain()
	}
	if keepAlive != nil {
		_ = keepAlive.Close()
	}
}

func (c *CaptureController) statusLocked() domain.Status {
	return domain.Status{
		Activation: c.activation,
		Recording:  c.recording,
		Review:     c.review.State(),
		Active:     c.recording == domain.RecordingActive,
	}
}

func (c *CaptureController) setRecording(state domain.RecordingState) {
	c.mu.Lock()
	c.recording = state
	c.mu.Unlock()
}

func (c *CaptureController) finishCapture(reason domain.StateReason) {
	c.setRecording(domain.RecordingIdle)
	c.events.CaptureStateChanged(c.Status(), reason)
}
