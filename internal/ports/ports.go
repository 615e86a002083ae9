package ports

import (
	"context"
	"errors"
	"io"
	"time"

	"voxstock/internal/domain"
)

// Capture failures the controller needs to tell apart.
var (
	// ErrRecorderUnavailable means the host has no usable capture tooling at
	// all, as opposed to the device refusing access.
	ErrRecorderUnavailable = errors.New("audio recorder is not available")
	// ErrMicAccessDenied means the capture device could not be opened.
	ErrMicAccessDenied = errors.New("microphone access denied")
	// ErrNoSupportedFormat means none of the preferred encodings is usable.
	ErrNoSupportedFormat = errors.New("no supported audio format")
)

// Backend failures the workflow needs to tell apart.
var (
	// ErrCommandNotUnderstood means the backend could not map the recording
	// to a known action.
	ErrCommandNotUnderstood = errors.New("command not understood")
	// ErrBackendUnavailable wraps transport-level failures.
	ErrBackendUnavailable = errors.New("inventory backend unreachable")
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// EncodingProfile is one negotiated audio container/codec pair.
type EncodingProfile struct {
	MimeType  string
	Container string
	Codec     string
	FileExt   string
}

// AudioSession is a live capture session producing encoded audio.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// KeepAlive holds the capture device open between recordings so the platform
// does not suspend it. Closed on teardown.
type KeepAlive interface {
	Close() error
}

// AudioCapture owns the microphone.
type AudioCapture interface {
	// Activate verifies the device can be opened and returns a handle that
	// keeps it warm for the rest of the process lifetime.
	Activate(ctx context.Context, cfg AudioConfig) (KeepAlive, error)
	// NegotiateEncoding picks the first supported profile from the
	// descending preference list.
	NegotiateEncoding() (EncodingProfile, error)
	// Start begins one encoded recording session.
	Start(ctx context.Context, cfg AudioConfig, enc EncodingProfile) (AudioSession, error)
}

// InventoryBackend is the external HTTP collaborator.
type InventoryBackend interface {
	SubmitAudio(ctx context.Context, blob domain.AudioBlob) (domain.ParsedCommand, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListSales(ctx context.Context) ([]domain.Sale, error)
	AddProducts(ctx context.Context, products []domain.ProductCandidate) (int, error)
	ConfirmSale(ctx context.Context, items []domain.ProductCandidate) (domain.SaleReceipt, error)
}

// IdentityProvider yields the per-install opaque user identifier.
type IdentityProvider interface {
	UserID() string
}

// ProductIndex answers price lookups against the last fetched product list.
type ProductIndex interface {
	Update(products []domain.Product)
	PriceByName(name string) (float64, bool)
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	CaptureStateChanged(status domain.Status, reason domain.StateReason)
	RecordingTick(elapsed time.Duration)
	CommandReady(review domain.ReviewPresentation)
	ReviewClosed(reason domain.StateReason)
	DataChanged(scope domain.RefreshScope)
	SessionError(code domain.ErrorCode, detail string)
}
