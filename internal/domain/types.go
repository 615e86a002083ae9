package domain

// CommandAction is the backend's interpretation of what the user asked for.
type CommandAction string

const (
	ActionAdd        CommandAction = "add"
	ActionRemove     CommandAction = "remove"
	ActionSell       CommandAction = "sell"
	ActionCheckStock CommandAction = "check_stock"
	ActionCheckValue CommandAction = "check_value"
	ActionUnknown    CommandAction = "unknown"
)

// IsSale reports whether the action routes to the sales confirmation
// endpoint instead of the stock addition endpoint.
func (a CommandAction) IsSale() bool {
	return a == ActionSell || a == ActionRemove
}

// ActivationState models the microphone permission lifecycle.
type ActivationState string

const (
	ActivationNone    ActivationState = "not_activated"
	ActivationGranted ActivationState = "activated"
	ActivationDenied  ActivationState = "denied"
)

// RecordingState models one capture attempt.
type RecordingState string

const (
	RecordingIdle       RecordingState = "idle"
	RecordingActive     RecordingState = "recording"
	RecordingStopping   RecordingState = "stopping"
	RecordingProcessing RecordingState = "processing"
)

// ReviewState models the confirmation workflow.
type ReviewState string

const (
	ReviewIdle       ReviewState = "idle"
	ReviewOpen       ReviewState = "reviewing"
	ReviewSubmitting ReviewState = "submitting"
)

// StateReason provides a structured reason for state transitions.
type StateReason string

const (
	ReasonAwaitingActivation   StateReason = "awaiting_activation"
	ReasonMicReady             StateReason = "mic_ready"
	ReasonMicDenied            StateReason = "mic_denied"
	ReasonMicUnavailable       StateReason = "mic_unavailable"
	ReasonNoSupportedFormat    StateReason = "no_supported_format"
	ReasonRecordingStarted     StateReason = "recording_started"
	ReasonRecordingStopped     StateReason = "recording_stopped"
	ReasonRecordingTooShort    StateReason = "recording_too_short"
	ReasonUploading            StateReason = "uploading"
	ReasonCommandReady         StateReason = "command_ready"
	ReasonCommandNotUnderstood StateReason = "command_not_understood"
	ReasonConnectionFailed     StateReason = "connection_failed"
	ReasonReviewCancelled      StateReason = "review_cancelled"
	ReasonStockUpdated         StateReason = "stock_updated"
	ReasonSaleRecorded         StateReason = "sale_recorded"
	ReasonSubmissionFailed     StateReason = "submission_failed"
)

// ErrorCode identifies non-fatal backend and capture errors.
type ErrorCode string

const (
	ErrorCodeStartup    ErrorCode = "startup"
	ErrorCodeActivation ErrorCode = "activation"
	ErrorCodeEncoding   ErrorCode = "encoding"
	ErrorCodeAudioStop  ErrorCode = "audio_stop"
	ErrorCodeCapture    ErrorCode = "capture"
	ErrorCodeUpload     ErrorCode = "upload"
	ErrorCodeSubmission ErrorCode = "submission"
	ErrorCodeValidation ErrorCode = "validation"
)

// RefreshScope names a data set the frontend should refetch.
type RefreshScope string

const (
	RefreshProducts RefreshScope = "products"
	RefreshSales    RefreshScope = "sales"
)

const (
	DefaultCategory = "autres"
	DefaultUnit     = "Unité"
)

// Categories returns the product category vocabulary.
func Categories() []string {
	return []string{"alimentation", "vêtements", "cosmétiques", "autres"}
}

// Units returns the sale unit vocabulary.
func Units() []string {
	return []string{"Unité", "Kg", "Litre", "Carton", "Sac", "Paquet"}
}

// Status summarizes the current runtime status for the frontend.
type Status struct {
	Activation ActivationState `json:"activation"`
	Recording  RecordingState  `json:"recording"`
	Review     ReviewState     `json:"review"`
	Active     bool            `json:"active"`
	Message    string          `json:"message,omitempty"`
}
