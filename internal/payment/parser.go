// ==============================================================================
// PAYMENT CONFIRMATION PARSER - internal/payment/parser.go
// ==============================================================================
// Parses free-form confirmation text pasted by the user (an M-Pesa style
// SMS) and matches it against the expected fee and payee.
// ==============================================================================

package payment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "okoa/pkg/errors"
)

// amountPattern matches a currency token directly followed by a numeric
// literal with up to two decimal places, e.g. "ksh 2000" or "ksh200.00".
// Input is lower-cased and comma-stripped before matching.
var amountPattern = regexp.MustCompile(`ksh\s*(\d+(?:\.\d{1,2})?)`)

// Confirmation is the ephemeral result of parsing one pasted message. It is
// consumed by the verification step and never persisted.
type Confirmation struct {
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	PayeeMatched bool            `json:"payee_matched"`
}

// Parser verifies pasted confirmation text for one merchant identity.
type Parser struct {
	payee string
}

func NewParser(expectedPayee string) *Parser {
	return &Parser{payee: expectedPayee}
}

// Payee returns the merchant identity the parser matches against.
func (p *Parser) Payee() string {
	return p.payee
}

// Parse extracts the paid amount and payee match from raw text. Empty or
// whitespace-only input returns ErrEmptyConfirmation before any parsing,
// since "nothing submitted" and "submitted but wrong" are distinct
// user-facing states. A missing amount token parses as zero.
func (p *Parser) Parse(text string) (Confirmation, error) {
	if strings.TrimSpace(text) == "" {
		return Confirmation{}, pkgerrors.ErrEmptyConfirmation
	}

	normalized := strings.ToLower(text)
	normalized = strings.ReplaceAll(normalized, ",", "")

	paid := decimal.Zero
	if m := amountPattern.FindStringSubmatch(normalized); m != nil {
		// The pattern only admits digits and one dot, so this cannot fail.
		paid = decimal.RequireFromString(m[1])
	}

	return Confirmation{
		PaidAmount:   paid,
		PayeeMatched: strings.Contains(normalized, strings.ToLower(p.payee)),
	}, nil
}

// Verify parses the text and checks both conditions: the paid amount,
// rounded to the nearest whole shilling, must equal the expected fee, and
// the payee identity must appear in the text. A single failure fails the
// whole verification with no partial credit.
func (p *Parser) Verify(text string, expectedFee int64) (Confirmation, error) {
	conf, err := p.Parse(text)
	if err != nil {
		return Confirmation{}, err
	}

	amountOK := conf.PaidAmount.Round(0).IntPart() == expectedFee
	if !amountOK || !conf.PayeeMatched {
		return conf, fmt.Errorf("%w: expected a payment of Ksh %d to %s",
			pkgerrors.ErrConfirmationMismatch, expectedFee, p.payee)
	}

	return conf, nil
}
