package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cookie-corner/internal/models"
)

// Stripe checkout event types relevant to order reconciliation. For
// asynchronous payment methods the completed event alone does not prove
// payment; the payment_status field decides.
const (
	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
	EventAsyncPaymentFailed    = "checkout.session.async_payment_failed"

	PaymentStatusPaid              = "paid"
	PaymentStatusUnpaid            = "unpaid"
	PaymentStatusNoPaymentRequired = "no_payment_required"
)

// signatureTolerance bounds how old a webhook timestamp may be
const signatureTolerance = 5 * time.Minute

// StripeConfig represents Stripe payment service configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

// StripeService handles hosted checkout sessions and webhook verification
// against the Stripe API
type StripeService struct {
	config  StripeConfig
	client  *http.Client
	baseURL string
	now     func() time.Time
}

// NewStripeService creates a new Stripe payment service
func NewStripeService(config StripeConfig) *StripeService {
	return &StripeService{
		config:  config,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.stripe.com",
		now:     time.Now,
	}
}

// SessionLineItem is one display line on the hosted payment page
type SessionLineItem struct {
	Name       string
	UnitAmount int // cents
	Quantity   int
}

// CheckoutSessionParams collects everything needed to create a session
type CheckoutSessionParams struct {
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	LineItems     []SessionLineItem
	// Metadata is the correlation channel back from the webhook. It is
	// treated as untrusted input on the way back in.
	Metadata map[string]string
}

// CheckoutSession is the session handle and redirect URL Stripe returns
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// stripeErrorResponse represents an error response from the Stripe API
type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCheckoutSession creates a hosted checkout session
func (s *StripeService) CreateCheckoutSession(params CheckoutSessionParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", params.CustomerEmail)
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)

	for i, item := range params.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", s.config.Currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.Itoa(item.UnitAmount))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	for key, value := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	req, err := http.NewRequest("POST", s.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.SecretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Stripe: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Stripe response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var stripeErr stripeErrorResponse
		if err := json.Unmarshal(body, &stripeErr); err == nil && stripeErr.Error.Message != "" {
			return nil, fmt.Errorf("stripe session creation failed: %s", stripeErr.Error.Message)
		}
		return nil, fmt.Errorf("stripe session creation failed with status %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}

	if session.URL == "" {
		return nil, fmt.Errorf("stripe session created without a redirect URL")
	}

	return &session, nil
}

// WebhookEvent is a verified Stripe event envelope
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object CheckoutSessionObject `json:"object"`
	} `json:"data"`
}

// CheckoutSessionObject is the checkout session payload inside an event
type CheckoutSessionObject struct {
	ID            string            `json:"id"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

// Paid reports whether the session proves payment. A completed event with
// payment_status "unpaid" means an asynchronous method is still settling.
func (o *CheckoutSessionObject) Paid() bool {
	return o.PaymentStatus == PaymentStatusPaid || o.PaymentStatus == PaymentStatusNoPaymentRequired
}

// ConstructEvent verifies the Stripe-Signature header against the raw
// payload and parses the event. The payload must be the exact raw request
// body; parsing before verification would bypass authenticity.
func (s *StripeService) ConstructEvent(payload []byte, sigHeader string) (*WebhookEvent, error) {
	if err := s.VerifySignature(payload, sigHeader); err != nil {
		return nil, err
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook event: %w", err)
	}

	return &event, nil
}

// VerifySignature checks the v1 HMAC-SHA256 signature scheme: the header
// carries a timestamp and one or more signatures over "<timestamp>.<body>".
func (s *StripeService) VerifySignature(payload []byte, sigHeader string) error {
	if sigHeader == "" {
		return fmt.Errorf("missing signature header: %w", models.ErrInvalidSignature)
	}

	var timestamp string
	var signatures []string

	for _, part := range strings.Split(sigHeader, ",") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) != 2 {
			continue
		}
		switch pair[0] {
		case "t":
			timestamp = pair[1]
		case "v1":
			signatures = append(signatures, pair[1])
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("malformed signature header: %w", models.ErrInvalidSignature)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed signature timestamp: %w", models.ErrInvalidSignature)
	}

	age := s.now().Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return fmt.Errorf("signature timestamp outside tolerance: %w", models.ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(s.config.WebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}

	return fmt.Errorf("no matching signature: %w", models.ErrInvalidSignature)
}
