package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"voxstock/internal/domain"
	"voxstock/internal/ports"
)

var ErrNoPendingCommand = errors.New("no command is pending review")

// ValidationError identifies the first confirmation form line that blocks a
// submission. Nothing is submitted when any line fails.
type ValidationError struct {
	Line   int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ConfirmationWorkflow owns the parsed command from receipt until the user
// confirms or cancels. At most one command is live at a time.
type ConfirmationWorkflow struct {
	backend ports.InventoryBackend
	prices  ports.ProductIndex
	events  ports.EventSink
	logger  *slog.Logger

	mu      sync.Mutex
	state   domain.ReviewState
	command domain.ParsedCommand
	lines   []domain.DraftLine
}

func NewConfirmationWorkflow(
	backend ports.InventoryBackend,
	prices ports.ProductIndex,
	events ports.EventSink,
	logger *slog.Logger,
) *ConfirmationWorkflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfirmationWorkflow{
		backend: backend,
		prices:  prices,
		events:  events,
		logger:  logger,
		state:   domain.ReviewIdle,
	}
}

// Present opens a review for the parsed command: one editable line per
// candidate product, or a single blank line if the backend extracted none.
// For sale-type actions, a missing unit price is auto-filled from the last
// fetched product list; the lookup is best-effort and never blocks.
func (w *ConfirmationWorkflow) Present(cmd domain.ParsedCommand) domain.ReviewPresentation {
	lines := make([]domain.DraftLine, 0, len(cmd.Products))
	for _, p := range cmd.Products {
		lines = append(lines, domain.NewDraftLine(p))
	}
	if len(lines) == 0 {
		lines = append(lines, domain.BlankDraftLine())
	}

	if cmd.Action.IsSale() {
		for i := range lines {
			if lines[i].PriceIsSet() {
				continue
			}
			if price, ok := w.prices.PriceByName(lines[i].Name); ok {
				lines[i].Price = strconv.FormatFloat(price, 'f', -1, 64)
			}
		}
	}

	w.mu.Lock()
	w.state = domain.ReviewOpen
	w.command = cmd
	w.lines = lines
	review := w.presentationLocked()
	w.mu.Unlock()

	w.logger.Info("command ready for review",
		"action", string(cmd.Action), "lines", len(lines))
	w.events.CommandReady(review)
	return review
}

// UpdateLine mirrors a user edit into the draft. Lines are index-addressed.
func (w *ConfirmationWorkflow) UpdateLine(index int, line domain.DraftLine) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != domain.ReviewOpen {
		return ErrNoPendingCommand
	}
	if index < 0 || index >= len(w.lines) {
		return fmt.Errorf("draft line %d does not exist", index)
	}
	w.lines[index] = line
	return nil
}

// Lines returns a copy of the current draft.
func (w *ConfirmationWorkflow) Lines() []domain.DraftLine {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.DraftLine, len(w.lines))
	copy(out, w.lines)
	return out
}

// State returns the current review state.
func (w *ConfirmationWorkflow) State() domain.ReviewState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Pending reports whether a command currently occupies the workflow.
func (w *ConfirmationWorkflow) Pending() bool {
	return w.State() != domain.ReviewIdle
}

// Cancel discards the pending command and all draft lines without any
// network call.
func (w *ConfirmationWorkflow) Cancel() error {
	w.mu.Lock()
	if w.state != domain.ReviewOpen {
		w.mu.Unlock()
		return ErrNoPendingCommand
	}
	w.resetLocked()
	w.mu.Unlock()

	w.events.ReviewClosed(domain.ReasonReviewCancelled)
	return nil
}

// Confirm validates every draft line and submits the whole batch to the
// endpoint selected by the command's action. Validation failure leaves the
// review open; a submission outcome, success or failure, closes it.
func (w *ConfirmationWorkflow) Confirm(ctx context.Context) (domain.SubmitResult, error) {
	w.mu.Lock()
	if w.state != domain.ReviewOpen {
		w.mu.Unlock()
		return domain.SubmitResult{}, ErrNoPendingCommand
	}
	action := w.command.Action
	lines := make([]domain.DraftLine, len(w.lines))
	copy(lines, w.lines)
	w.mu.Unlock()

	products, err := validateLines(lines)
	if err != nil {
		w.events.SessionError(domain.ErrorCodeValidation, err.Error())
		return domain.SubmitResult{}, err
	}

	w.mu.Lock()
	if w.state != domain.ReviewOpen {
		w.mu.Unlock()
		return domain.SubmitResult{}, ErrNoPendingCommand
	}
	w.state = domain.ReviewSubmitting
	w.mu.Unlock()

	result := domain.SubmitResult{Action: action, Processed: len(products)}
	closeReason := domain.ReasonStockUpdated
	var submitErr error

	if action.IsSale() {
		var receipt domain.SaleReceipt
		receipt, submitErr = w.backend.ConfirmSale(ctx, products)
		result.TotalAmount = receipt.TotalAmount
		closeReason = domain.ReasonSaleRecorded
	} else {
		var processed int
		processed, submitErr = w.backend.AddProducts(ctx, products)
		if processed > 0 {
			result.Processed = processed
		}
	}

	w.mu.Lock()
	w.resetLocked()
	w.mu.Unlock()

	if submitErr != nil {
		w.logger.Warn("batch submission failed",
			"action", string(action), "error", submitErr)
		w.events.SessionError(domain.ErrorCodeSubmission, submitErr.Error())
		w.events.ReviewClosed(domain.ReasonSubmissionFailed)
		return domain.SubmitResult{}, submitErr
	}

	w.logger.Info("command submitted",
		"action", string(action), "processed", result.Processed)
	w.events.ReviewClosed(closeReason)
	w.events.DataChanged(domain.RefreshProducts)
	w.events.DataChanged(domain.RefreshSales)
	return result, nil
}

func (w *ConfirmationWorkflow) presentationLocked() domain.ReviewPresentation {
	lines := make([]domain.DraftLine, len(w.lines))
	copy(lines, w.lines)
	return domain.ReviewPresentation{Command: w.command, Lines: lines}
}

func (w *ConfirmationWorkflow) resetLocked() {
	w.state = domain.ReviewIdle
	w.command = domain.ParsedCommand{}
	w.lines = nil
}

// validateLines parses user input: a non-empty name and a quantity of at
// least 1 are required on every line; a blank or invalid price defaults to
// zero. The first failing line halts the whole batch.
func validateLines(lines []domain.DraftLine) ([]domain.ProductCandidate, error) {
	products := make([]domain.ProductCandidate, 0, len(lines))
	for i, line := range lines {
		name := strings.TrimSpace(line.Name)
		quantity, qtyErr := strconv.Atoi(strings.TrimSpace(line.Quantity))
		if name == "" || qtyErr != nil || quantity < 1 {
			return nil, &ValidationError{
				Line:   i + 1,
				Reason: "a name and a quantity of at least 1 are required",
			}
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(line.Price), 64)
		if err != nil || price < 0 {
			price = 0
		}

		category := strings.TrimSpace(line.Category)
		if category == "" {
			category = domain.DefaultCategory
		}
		unit := strings.TrimSpace(line.Unit)
		if unit == "" {
			unit = domain.DefaultUnit
		}

		products = append(products, domain.ProductCandidate{
			Name:        name,
			Category:    category,
			Unit:        unit,
			Quantity:    quantity,
			Price:       price,
			Description: strings.TrimSpace(line.Description),
		})
	}
	return products, nil
}
