package usecase

import (
	"context"
	"errors"
	"testing"

	"voxstock/internal/domain"
)

func TestConfirmationPresentBuildsDraftLines(t *testing.T) {
	t.Parallel()

	events := &fakeEventSink{}
	workflow := NewConfirmationWorkflow(&fakeBackend{}, &fakeIndex{}, events, nil)

	review := workflow.Present(domain.ParsedCommand{
		OriginalText: "ajouter 3 litres de lait",
		Action:       domain.ActionAdd,
		Products: []domain.ProductCandidate{
			{Name: "Lait", Quantity: 3, Unit: "Litre", Price: 600},
		},
	})

	if len(review.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(review.Lines))
	}
	line := review.Lines[0]
	if line.Name != "Lait" || line.Quantity != "3" || line.Unit != "Litre" || line.Price != "600" {
		t.Fatalf("unexpected line: %+v", line)
	}
	if line.Category != domain.DefaultCategory {
		t.Fatalf("expected default category, got %q", line.Category)
	}

	if workflow.State() != domain.ReviewOpen {
		t.Fatalf("expected review to be open")
	}
	if got := events.snapshotReviews(); len(got) != 1 {
		t.Fatalf("expected 1 command-ready event, got %d", len(got))
	}
}

func TestConfirmationPresentWithoutProductsGivesBlankLine(t *testing.T) {
	t.Parallel()

	workflow := NewConfirmationWorkflow(&fakeBackend{}, &fakeIndex{}, &fakeEventSink{}, nil)

	review := workflow.Present(domain.ParsedCommand{Action: domain.ActionAdd})
	if len(review.Lines) != 1 {
		t.Fatalf("expected a single blank line, got %d", len(review.Lines))
	}
	if review.Lines[0].Name != "" || review.Lines[0].Quantity != "" {
		t.Fatalf("expected blank line, got %+v", review.Lines[0])
	}
	if review.Lines[0].Category != domain.DefaultCategory || review.Lines[0].Unit != domain.DefaultUnit {
		t.Fatalf("blank line should carry defaults, got %+v", review.Lines[0])
	}
}

func TestConfirmationPresentAutoFillsSalePrice(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{prices: map[string]float64{"Riz": 500}}
	workflow := NewConfirmationWorkflow(&fakeBackend{}, index, &fakeEventSink{}, nil)

	review := workflow.Present(domain.ParsedCommand{
		Action: domain.ActionSell,
		Products: []domain.ProductCandidate{
			{Name: "Riz", Quantity: 2},
		},
	})

	if review.Lines[0].Price != "500" {
		t.Fatalf("expected auto-filled price 500, got %q", review.Lines[0].Price)
	}
}

func TestConfirmationPresentKeepsSpokenPrice(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{prices: map[string]float64{"Riz": 500}}
	workflow := NewConfirmationWorkflow(&fakeBackend{}, index, &fakeEventSink{}, nil)

	review := workflow.Present(domain.ParsedCommand{
		Action: domain.ActionSell,
		Products: []domain.ProductCandidate{
			{Name: "Riz", Quantity: 2, Price: 450},
		},
	})

	if review.Lines[0].Price != "450" {
		t.Fatalf("spoken price must win over the catalog, got %q", review.Lines[0].Price)
	}
}

func TestConfirmationConfirmRoutesAddToStockEndpoint(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	events := &fakeEventSink{}
	workflow := NewConfirmationWorkflow(backend, &fakeIndex{}, events, nil)

	workflow.Present(domain.ParsedCommand{
		Action: domain.ActionAdd,
		Products: []domain.ProductCandidate{
			{Name: "Sucre", Quantity: 5, Price: 2500},
			{Name: "Sel", Quantity: 2, Price: 300},
		},
	})

	result, err := workflow.Confirm(context.Background())
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if result.Action != domain.ActionAdd || result.Processed != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}

	added := backend.snapshotAdded()
	if len(added) != 1 || len(added[0]) != 2 {
		t.Fatalf("expected one batch of 2 products, got %+v", added)
	}
	if len(backend.snapshotConfirmed()) != 0 {
		t.Fatalf("add command must not hit the sales endpoint")
	}

	closed := events.snapshotClosed()
	if len(closed) != 1 || closed[0] != domain.ReasonStockUpdated {
		t.Fatalf("expected stock_updated close, got %v", closed)
	}
	data := events.snapshotData()
	if len(data) != 2 || data[0] != domain.RefreshProducts || data[1] != domain.RefreshSales {
		t.Fatalf("expected both refresh scopes, got %v", data)
	}
	if workflow.State() != domain.ReviewIdle {
		t.Fatalf("expected idle after confirm")
	}
}

func TestConfirmationConfirmRoutesSaleToSalesEndpoint(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{receipt: domain.SaleReceipt{TotalAmount: 1500}}
	events := &fakeEventSink{}
	workflow := NewConfirmationWorkflow(backend, &fakeIndex{}, events, nil)

	workflow.Present(domain.ParsedCommand{
		Action: domain.ActionSell,
		Products: []domain.ProductCandidate{
			{Name: "Riz", Quantity: 3, Price: 500},
		},
	})

	result, err := workflow.Confirm(context.Background())
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if result.TotalAmount != 1500 {
		t.Fatalf("expected receipt total 1500, got %v", result.TotalAmount)
	}

	if len(backend.snapshotConfirmed()) != 1 {
		t.Fatalf("expected one sale batch")
	}
	if len(backend.snapshotAdded()) != 0 {
		t.Fatalf("sale command must not hit the stock endpoint")
	}

	closed := events.snapshotClosed()
	if len(closed) != 1 || closed[0] != domain.ReasonSaleRecorded {
		t.Fatalf("expected sale_recorded close, got %v", closed)
	}
}

func TestConfirmationConfirmValidationFailureKeepsReviewOpen(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	events := &fakeEventSink{}
	workflow := NewConfirmationWorkflow(backend, &fakeIndex{}, events, nil)

	workflow.Present(domain.ParsedCommand{
		Action: domain.ActionAdd,
		Products: []domain.ProductCandidate{
			{Name: "Sucre", Quantity: 5},
			{Name: "", Quantity: 1},
		},
	})

	_, err := workflow.Confirm(context.Background())
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Line != 2 {
		t.Fatalf("expected failure on line 2, got %d", validationErr.Line)
	}

	if workflow.State() != domain.ReviewOpen {
		t.Fatalf("validation failure must keep the review open")
	}
	if len(backend.snapshotAdded()) != 0 || len(backend.snapshotConfirmed()) != 0 {
		t.Fatalf("nothing may be submitted when a line fails")
	}
	errorsGot := events.snapshotErrors()
	if len(errorsGot) != 1 || errorsGot[0].code != domain.ErrorCodeValidation {
		t.Fatalf("expected validation error event, got %v", errorsGot)
	}
}

func TestConfirmationConfirmZeroQuantityFails(t *testing.T) {
	t.Parallel()

	workflow := NewConfirmationWorkflow(&fakeBackend{}, &fakeIndex{}, &fakeEventSink{}, nil)
	workflow.Present(domain.ParsedCommand{Action: domain.ActionAdd})

	if err := workflow.UpdateLine(0, domain.DraftLine{Name: "Sucre", Quantity: "0"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	_, err := workflow.Confirm(context.Background())
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Line != 1 {
		t.Fatalf("expected line 1 validation failure, got %v", err)
	}
}

func TestConfirmationConfirmAppliesEditedLines(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	workflow := NewConfirmationWorkflow(backend, &fakeIndex{}, &fakeEventSink{}, nil)
	workflow.Present(domain.ParsedCommand{
		Action:   domain.ActionAdd,
		Products: []domain.ProductCandidate{{Name: "Sucre", Quantity: 5, Price: 2500}},
	})

	err := workflow.UpdateLine(0, domain.DraftLine{
		Name:     "  Sucre roux  ",
		Quantity: "7",
		Price:    "invalid",
		Category: "",
		Unit:     "",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if _, err := workflow.Confirm(context.Background()); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	added := backend.snapshotAdded()
	got := added[0][0]
	if got.Name != "Sucre roux" || got.Quantity != 7 {
		t.Fatalf("unexpected submitted product: %+v", got)
	}
	if got.Price != 0 {
		t.Fatalf("invalid price must default to 0, got %v", got.Price)
	}
	if got.Category != domain.DefaultCategory || got.Unit != domain.DefaultUnit {
		t.Fatalf("empty category/unit must default, got %+v", got)
	}
}

func TestConfirmationConfirmSubmissionFailureClosesReview(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{addErr: errors.New("backend down")}
	events := &fakeEventSink{}
	workflow := NewConfirmationWorkflow(backend, &fakeIndex{}, events, nil)

	workflow.Present(domain.ParsedCommand{
		Action:   domain.ActionAdd,
		Products: []domain.ProductCandidate{{Name: "Sucre", Quantity: 5}},
	})

	if _, err := workflow.Confirm(context.Background()); err == nil {
		t.Fatalf("expected submission error")
	}

	if workflow.State() != domain.ReviewIdle {
		t.Fatalf("submission outcome must close the review")
	}
	closed := events.snapshotClosed()
	if len(closed) != 1 || closed[0] != domain.ReasonSubmissionFailed {
		t.Fatalf("expected submission_failed close, got %v", closed)
	}
	errorsGot := events.snapshotErrors()
	if len(errorsGot) != 1 || errorsGot[0].code != domain.ErrorCodeSubmission {
		t.Fatalf("expected submission error event, got %v", errorsGot)
	}
	if len(events.snapshotData()) != 0 {
		t.Fatalf("no refresh should be requested on failure")
	}
}

func TestConfirmationCancelDiscardsWithoutNetworkCall(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	events := &fakeEventSink{}
	workflow := NewConfirmationWorkflow(backend, &fakeIndex{}, events, nil)

	workflow.Present(domain.ParsedCommand{
		Action:   domain.ActionSell,
		Products: []domain.ProductCandidate{{Name: "Riz", Quantity: 2, Price: 500}},
	})

	if err := workflow.Cancel(); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if workflow.Pending() {
		t.Fatalf("expected no pending command after cancel")
	}
	if len(backend.snapshotAdded()) != 0 || len(backend.snapshotConfirmed()) != 0 {
		t.Fatalf("cancel must not call the backend")
	}
	closed := events.snapshotClosed()
	if len(closed) != 1 || closed[0] != domain.ReasonReviewCancelled {
		t.Fatalf("expected review_cancelled close, got %v", closed)
	}
}

func TestConfirmationCancelWithoutPendingCommand(t *testing.T) {
	t.Parallel()

	workflow := NewConfirmationWorkflow(&fakeBackend{}, &fakeIndex{}, &fakeEventSink{}, nil)
	if err := workflow.Cancel(); !errors.Is(err, ErrNoPendingCommand) {
		t.Fatalf("expected ErrNoPendingCommand, got %v", err)
	}
	if _, err := workflow.Confirm(context.Background()); !errors.Is(err, ErrNoPendingCommand) {
		t.Fatalf("expected ErrNoPendingCommand, got %v", err)
	}
}

func TestConfirmationUpdateLineBounds(t *testing.T) {
	t.Parallel()

	workflow := NewConfirmationWorkflow(&fakeBackend{}, &fakeIndex{}, &fakeEventSink{}, nil)

	if err := workflow.UpdateLine(0, domain.DraftLine{}); !errors.Is(err, ErrNoPendingCommand) {
		t.Fatalf("expected ErrNoPendingCommand, got %v", err)
	}

	workflow.Present(domain.ParsedCommand{Action: domain.ActionAdd})
	if err := workflow.UpdateLine(5, domain.DraftLine{}); err == nil {
		t.Fatalf("expected out-of-range error")
	}
	if err := workflow.UpdateLine(-1, domain.DraftLine{}); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}
