package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"cookie-corner/internal/models"
)

// ResendConfig represents Resend email service configuration
type ResendConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	// BccEmails receive a copy of every confirmation (internal inbox)
	BccEmails []string
}

// ResendEmailService sends transactional email via the Resend API
type ResendEmailService struct {
	config  ResendConfig
	client  *http.Client
	baseURL string
}

// NewResendEmailService creates a new Resend email service
func NewResendEmailService(config ResendConfig) *ResendEmailService {
	return &ResendEmailService{
		config:  config,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.resend.com",
	}
}

// ResendEmailRequest represents the request structure for the Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Bcc     []string `json:"bcc,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from the Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from the Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

// getFromField constructs the from field properly
func (s *ResendEmailService) getFromField() string {
	if s.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}
	return s.config.FromEmail
}

// SendOrderConfirmation sends the order confirmation email rendered from
// the persisted order data
func (s *ResendEmailService) SendOrderConfirmation(order *models.Order) error {
	subject := "Cookie Corner Cafe - Order confirmed"
	htmlContent, textContent := renderOrderConfirmation(order)

	return s.sendEmail(ResendEmailRequest{
		From:    s.getFromField(),
		To:      []string{order.CustomerEmail},
		Bcc:     s.config.BccEmails,
		Subject: subject,
		HTML:    htmlContent,
		Text:    textContent,
	})
}

// SendRegistrationConfirmation sends the event ticket confirmation email.
// event may be nil when the parent event could not be loaded.
func (s *ResendEmailService) SendRegistrationConfirmation(reg *models.EventRegistration, event *models.Event) error {
	eventTitle := "Event"
	if event != nil && event.Title != "" {
		eventTitle = event.Title
	}

	subject := fmt.Sprintf("Cookie Corner Cafe - %s ticket confirmed", eventTitle)
	htmlContent, textContent := renderRegistrationConfirmation(reg, event)

	return s.sendEmail(ResendEmailRequest{
		From:    s.getFromField(),
		To:      []string{reg.CustomerEmail},
		Bcc:     s.config.BccEmails,
		Subject: subject,
		HTML:    htmlContent,
		Text:    textContent,
	})
}

// sendEmail posts one email request to the Resend API
func (s *ResendEmailService) sendEmail(request ResendEmailRequest) error {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", s.baseURL+"/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorResp ResendErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil {
			return fmt.Errorf("failed to send email, status: %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to send email: %s", errorResp.Message)
	}

	var response ResendEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func renderOrderConfirmation(order *models.Order) (string, string) {
	var itemsHTML strings.Builder
	var itemsText strings.Builder
	for _, line := range order.Lines {
		name := html.EscapeString(line.ProductName)
		size := ""
		if line.Size != "" {
			size = fmt.Sprintf(" (%s)", html.EscapeString(line.Size))
		}
		itemsHTML.WriteString(fmt.Sprintf(`<li style="margin:0 0 10px 0;"><strong>%d&times;</strong> %s%s`, line.Quantity, name, size))
		if len(line.Customizations) > 0 {
			itemsHTML.WriteString(fmt.Sprintf(`<div style="color:#555;font-size:12px;margin-top:2px;">Customizations: %s</div>`,
				html.EscapeString(strings.Join(line.Customizations, ", "))))
		}
		itemsHTML.WriteString("</li>")

		itemsText.WriteString(fmt.Sprintf("- %dx %s%s\n", line.Quantity, line.ProductName, strings.TrimPrefix(size, " ")))
		if len(line.Customizations) > 0 {
			itemsText.WriteString(fmt.Sprintf("  Customizations: %s\n", strings.Join(line.Customizations, ", ")))
		}
	}

	fulfillment := "Pickup"
	deliveryBlockHTML := ""
	deliveryBlockText := ""
	if order.DeliveryType == models.DeliveryDelivery {
		fulfillment = "Delivery"
		address := ""
		if order.DeliveryAddress != nil {
			address = *order.DeliveryAddress
		}
		deliveryBlockHTML = fmt.Sprintf(`<p><strong>Delivery address:</strong> %s</p>`, html.EscapeString(address))
		deliveryBlockText = fmt.Sprintf("Delivery address: %s\n", address)
	}

	notesBlockHTML := ""
	notesBlockText := ""
	if order.Notes != "" {
		notesBlockHTML = fmt.Sprintf(`<p><strong>Notes:</strong> %s</p>`, html.EscapeString(order.Notes))
		notesBlockText = fmt.Sprintf("Notes: %s\n", order.Notes)
	}

	htmlContent := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Order Confirmed</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #B45309; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Order Confirmed</h1>
        </div>
        <div class="content">
            <p>Thanks, %s! Your payment went through and your order is confirmed.</p>
            <p><strong>Order:</strong> %s</p>
            <ul>%s</ul>
            <p><strong>Total:</strong> $%.2f</p>
            <p><strong>%s:</strong> %s</p>
            %s%s
            <p>We'll reach out at %s if anything comes up.</p>
        </div>
        <div class="footer">
            <p>Cookie Corner Cafe</p>
        </div>
    </div>
</body>
</html>`,
		html.EscapeString(order.CustomerName),
		html.EscapeString(order.ID),
		itemsHTML.String(),
		order.TotalInCurrency(),
		fulfillment,
		html.EscapeString(order.PickupDeliveryTime),
		deliveryBlockHTML,
		notesBlockHTML,
		html.EscapeString(order.CustomerPhone),
	)

	textContent := fmt.Sprintf(`Order Confirmed

Thanks, %s! Your payment went through and your order is confirmed.

Order: %s

%s
Total: $%.2f
%s: %s
%s%s
We'll reach out at %s if anything comes up.

Cookie Corner Cafe`,
		order.CustomerName,
		order.ID,
		itemsText.String(),
		order.TotalInCurrency(),
		fulfillment,
		order.PickupDeliveryTime,
		deliveryBlockText,
		notesBlockText,
		order.CustomerPhone,
	)

	return htmlContent, textContent
}

func renderRegistrationConfirmation(reg *models.EventRegistration, event *models.Event) (string, string) {
	eventTitle := "Event"
	when := "TBD"
	location := "TBD"
	if event != nil {
		if event.Title != "" {
			eventTitle = event.Title
		}
		if event.StartsAt != nil {
			when = event.StartsAt.Format("Mon, Jan 2 2006 at 3:04 PM")
		}
		if event.Location != "" {
			location = event.Location
		}
	}

	htmlContent := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Ticket Confirmed</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #B45309; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Ticket Confirmed</h1>
        </div>
        <div class="content">
            <p>Thanks, %s!</p>
            <p><strong>Event:</strong> %s</p>
            <p><strong>When:</strong> %s</p>
            <p><strong>Where:</strong> %s</p>
            <p><strong>Tickets:</strong> %d</p>
            <p><strong>Total:</strong> $%.2f</p>
            <p><strong>Registration:</strong> %s</p>
            <p>Show this email at the door. See you there!</p>
        </div>
        <div class="footer">
            <p>Cookie Corner Cafe</p>
        </div>
    </div>
</body>
</html>`,
		html.EscapeString(reg.CustomerName),
		html.EscapeString(eventTitle),
		html.EscapeString(when),
		html.EscapeString(location),
		reg.Quantity,
		reg.TotalInCurrency(),
		html.EscapeString(reg.ID),
	)

	textContent := fmt.Sprintf(`Ticket Confirmed

Thanks, %s!

Event: %s
When: %s
Where: %s
Tickets: %d
Total: $%.2f
Registration: %s

Show this email at the door. See you there!

Cookie Corner Cafe`,
		reg.CustomerName,
		eventTitle,
		when,
		location,
		reg.Quantity,
		reg.TotalInCurrency(),
		reg.ID,
	)

	return htmlContent, textContent
}
