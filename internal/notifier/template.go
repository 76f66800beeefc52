package notifier

import (
	"bytes"
	"fmt"
	"html/template"
)

// ResponseEmailData fills the ticket response template.
type ResponseEmailData struct {
	TicketID     string
	PersonName   string
	Response     string
	TicketTitle  string
	TicketStatus string
	TicketURL    string
}

var responseTemplate = template.Must(template.New("ticket-response").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0 auto;background-color:#f9fafb;padding:0 8px;font-family:sans-serif;">
  <div style="margin:40px auto;max-width:600px;border:1px solid #d1d5db;border-radius:8px;background-color:#ffffff;padding:40px;">
    <h1 style="margin:0;font-size:24px;font-weight:600;color:#111827;">Antwort auf Ihr Support-Ticket</h1>
    <p style="font-size:16px;line-height:24px;color:#374151;">Hallo {{if .PersonName}}{{.PersonName}}{{else}}Kunde{{end}},</p>
    <p style="font-size:16px;line-height:24px;color:#374151;">vielen Dank f&uuml;r Ihre Anfrage. Wir haben eine Antwort auf Ihr Support-Ticket:</p>
    <div style="margin:24px 0;border:1px solid #e5e7eb;border-radius:8px;background-color:#f9fafb;padding:20px;">
      <p style="margin:0;font-size:14px;font-weight:600;color:#111827;">Ticket-ID: <span style="font-family:monospace;font-size:13px;">{{.TicketID}}</span></p>
      {{if .TicketTitle}}<p style="margin:8px 0 0;font-size:14px;color:#374151;"><strong>Betreff:</strong> {{.TicketTitle}}</p>{{end}}
      {{if .TicketStatus}}<p style="margin:8px 0 0;font-size:14px;color:#374151;"><strong>Status:</strong> {{.TicketStatus}}</p>{{end}}
    </div>
    <p style="margin:0 0 12px;font-size:14px;font-weight:600;color:#111827;">Unsere Antwort:</p>
    <div style="border:1px solid #e5e7eb;border-radius:8px;background-color:#ffffff;padding:20px;">
      <p style="margin:0;white-space:pre-wrap;font-size:15px;line-height:24px;color:#1f2937;">{{.Response}}</p>
    </div>
    {{if .TicketURL}}
    <div style="margin:32px 0;text-align:center;">
      <a href="{{.TicketURL}}" style="display:inline-block;border-radius:8px;background-color:#111827;padding:12px 24px;font-size:14px;font-weight:600;color:#ffffff;text-decoration:none;">Ticket ansehen und antworten</a>
    </div>
    {{end}}
    <hr style="margin:32px 0;border:none;border-top:1px solid #e5e7eb;" />
    <p style="margin:0;font-size:14px;line-height:20px;color:#4b5563;">Falls Sie weitere Fragen haben, antworten Sie einfach &uuml;ber den Button oben.</p>
    <p style="margin:32px 0 0;font-size:12px;line-height:18px;color:#6b7280;">Mit freundlichen Gr&uuml;&szlig;en,<br />Ihr Support-Team</p>
  </div>
</body>
</html>`))

// RenderResponseEmail produces the HTML body for an agent reply notification.
func RenderResponseEmail(data ResponseEmailData) (string, error) {
	var buf bytes.Buffer
	if err := responseTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render response email: %w", err)
	}
	return buf.String(), nil
}

// ResponseSubject builds the reply subject line for a ticket.
func ResponseSubject(ticketTitle, ticketID string) string {
	if ticketTitle == "" {
		ticketTitle = "Ihr Ticket"
	}
	return fmt.Sprintf("Re: %s - %s", ticketTitle, ticketID)
}
