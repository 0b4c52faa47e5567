// ==============================================================================
// PAYMENT GATEWAY CLIENT - internal/mpesa/client.go
// ==============================================================================
package mpesa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"okoa/pkg/config"
	pkgerrors "okoa/pkg/errors"
	"okoa/pkg/logger"
)

// Client talks to the remote STK push gateway. The gateway accepting a
// request only means the payer will be prompted; the final payment result
// arrives separately.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg config.GatewayConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log,
	}
}

type stkPushRequest struct {
	Phone     string `json:"phone"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

type stkPushResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// STKPush asks the gateway to prompt the payer's device for the given
// amount. phone must already be E.164-normalized digits (254...).
func (c *Client) STKPush(ctx context.Context, phone string, amount int64, reference string) error {
	body, err := json.Marshal(stkPushRequest{Phone: phone, Amount: amount, Reference: reference})
	if err != nil {
		return pkgerrors.Wrap(err, "failed to encode stk push request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/stk-push", bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(err, "failed to build stk push request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("STK push request failed", map[string]interface{}{
			"error":     err.Error(),
			"reference": reference,
		})
		return pkgerrors.ErrGatewayUnavailable
	}
	defer resp.Body.Close()

	var decoded stkPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && resp.StatusCode >= 300 {
		return pkgerrors.ErrGatewayUnavailable
	}

	if resp.StatusCode >= 300 {
		// Surface the gateway's own message when it gave one.
		if decoded.Error != "" {
			return errors.New(decoded.Error)
		}
		return fmt.Errorf("payment initiation failed (status %d)", resp.StatusCode)
	}

	c.logger.Info("STK push accepted", map[string]interface{}{
		"reference": reference,
		"amount":    amount,
	})
	return nil
}

// NewReference builds a prefixed unique reference for one push attempt.
func NewReference(prefix string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}

// NormalizeMSISDN converts any accepted Kenyan phone form to E.164 digits:
// strip non-digits, replace a leading 0 with 254, and prepend 254 when the
// country code is missing.
func NormalizeMSISDN(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if strings.HasPrefix(cleaned, "0") {
		cleaned = "254" + cleaned[1:]
	}
	if !strings.HasPrefix(cleaned, "254") {
		cleaned = "254" + cleaned
	}
	return cleaned
}
