package domain

import (
	"strconv"
	"strings"
)

// ProductCandidate is one product the backend extracted from a spoken
// command, and also the shape submitted back on confirmation.
type ProductCandidate struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Unit        string  `json:"unit"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
}

// ParsedCommand is the backend's structured interpretation of a spoken
// instruction.
type ParsedCommand struct {
	OriginalText string             `json:"original_text"`
	Action       CommandAction      `json:"action"`
	Products     []ProductCandidate `json:"products"`
	Message      string             `json:"message,omitempty"`
}

// DraftLine is one user-editable row of the confirmation form. Quantity and
// price hold raw user input and are only parsed at submission time.
type DraftLine struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Unit        string `json:"unit"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// NewDraftLine mirrors a product candidate into an editable form row. Zero
// quantity and price render as empty inputs rather than literal zeros.
func NewDraftLine(p ProductCandidate) DraftLine {
	line := DraftLine{
		Name:        p.Name,
		Category:    p.Category,
		Unit:        p.Unit,
		Description: p.Description,
	}
	if line.Category == "" {
		line.Category = DefaultCategory
	}
	if line.Unit == "" {
		line.Unit = DefaultUnit
	}
	if p.Quantity != 0 {
		line.Quantity = strconv.Itoa(p.Quantity)
	}
	if p.Price != 0 {
		line.Price = strconv.FormatFloat(p.Price, 'f', -1, 64)
	}
	return line
}

// BlankDraftLine returns an empty form row with default category and unit.
func BlankDraftLine() DraftLine {
	return DraftLine{Category: DefaultCategory, Unit: DefaultUnit}
}

// PriceIsSet reports whether the user (or the backend) provided a usable,
// non-zero unit price on this line.
func (l DraftLine) PriceIsSet() bool {
	price, err := strconv.ParseFloat(strings.TrimSpace(l.Price), 64)
	return err == nil && price > 0
}

// ReviewPresentation is what the confirmation workflow hands to the UI when
// a parsed command enters review.
type ReviewPresentation struct {
	Command ParsedCommand `json:"command"`
	Lines   []DraftLine   `json:"lines"`
}

// SubmitResult reports the outcome of a confirmed command.
type SubmitResult struct {
	Action      CommandAction `json:"action"`
	Processed   int           `json:"processed"`
	TotalAmount float64       `json:"total_amount"`
}

// AudioBlob is one assembled recording ready for upload.
type AudioBlob struct {
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type"`
	FileName string `json:"file_name"`
}

// Size returns the assembled byte count.
func (b AudioBlob) Size() int {
	return len(b.Data)
}
