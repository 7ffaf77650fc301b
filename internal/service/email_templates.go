package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"lab-booking/internal/domain/entity"
)

var statusLabels = map[string]string{
	"PENDING":          "Pending",
	"CONFIRMED":        "Confirmed",
	"SAMPLE_COLLECTED": "Sample Collected",
	"PROCESSING":       "Processing",
	"COMPLETED":        "Completed",
	"CANCELLED":        "Cancelled",
}

var statusColors = map[string]string{
	"PENDING":          "#f59e0b",
	"CONFIRMED":        "#3b82f6",
	"SAMPLE_COLLECTED": "#8b5cf6",
	"PROCESSING":       "#6366f1",
	"COMPLETED":        "#10b981",
	"CANCELLED":        "#ef4444",
}

const emailLayout = `
{{define "header"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}} - {{.LabName}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f5f5f5;">
  <table role="presentation" style="width: 100%; border-collapse: collapse; padding: 20px;">
    <tr><td align="center">
      <table role="presentation" style="max-width: 600px; width: 100%; background-color: #ffffff; border-radius: 8px;">
        <tr>
          <td style="padding: 40px 30px 30px; text-align: center; background-color: #059669; border-radius: 8px 8px 0 0;">
            <h1 style="margin: 0; color: #ffffff; font-size: 28px;">{{.Title}}</h1>
            {{if .BookingID}}<p style="margin: 10px 0 0; color: #d1fae5;">Booking ID: {{.BookingID}}</p>{{end}}
          </td>
        </tr>
        <tr><td style="padding: 30px; color: #374151; font-size: 16px; line-height: 1.6;">
          <p>Hello <strong>{{.Name}}</strong>,</p>
{{end}}

{{define "footer"}}
        </td></tr>
        <tr>
          <td style="padding: 20px 30px; background-color: #f9fafb; border-top: 1px solid #e5e7eb;">
            <p style="margin: 0; color: #6b7280; font-size: 12px; text-align: center;">
              This is an automated email from {{.LabName}}. Please do not reply to this email.
            </p>
          </td>
        </tr>
      </table>
    </td></tr>
  </table>
</body>
</html>{{end}}

{{define "booking.created"}}{{template "header" .}}
          <p>Thank you for booking with {{.LabName}}. Your booking has been received and is pending confirmation.</p>
          <table role="presentation" style="width: 100%; margin: 20px 0;">
            <tr><td><strong>Type</strong></td><td>{{.TypeText}}</td></tr>
            <tr><td><strong>Date</strong></td><td>{{.Schedule}}</td></tr>
          </table>
          <table role="presentation" style="width: 100%; border-collapse: collapse;">
            {{range .Tests}}<tr><td style="padding: 8px 0; border-bottom: 1px solid #e5e7eb;">{{.Name}}</td><td style="text-align: right;">&#8377;{{.Price}}</td></tr>
            {{end}}<tr><td style="padding: 8px 0;"><strong>Total</strong></td><td style="text-align: right;"><strong>&#8377;{{.Total}}</strong></td></tr>
          </table>
          <p style="text-align: center; margin: 30px 0;"><a href="{{.Link}}" style="padding: 14px 28px; background-color: #059669; color: #ffffff; text-decoration: none; border-radius: 6px;">View Booking Details</a></p>
{{template "footer" .}}{{end}}

{{define "booking.status_changed"}}{{template "header" .}}
          <p>Your booking status has been updated.</p>
          <div style="margin: 30px 0; padding: 20px; background-color: #f9fafb; border-left: 4px solid {{.StatusColor}};">
            <h2 style="margin: 0 0 10px; font-size: 18px;">Status: {{.NewStatus}}</h2>
            <p style="margin: 0; color: #6b7280; font-size: 14px;">Previous status: {{.OldStatus}} &rarr; New status: {{.NewStatus}}</p>
          </div>
          {{if .Notes}}<div style="margin: 20px 0; padding: 15px; background-color: #eff6ff; border-left: 4px solid #3b82f6;">
            <p style="margin: 0 0 8px; font-weight: 600;">Additional Notes:</p>
            <p style="margin: 0;">{{.Notes}}</p>
          </div>{{end}}
          <p style="text-align: center; margin: 30px 0;"><a href="{{.Link}}" style="padding: 14px 28px; background-color: #059669; color: #ffffff; text-decoration: none; border-radius: 6px;">View Booking Details</a></p>
          <p style="color: #6b7280; font-size: 14px;">If you have any questions about this update, please don't hesitate to contact us.</p>
{{template "footer" .}}{{end}}

{{define "user.welcome"}}{{template "header" .}}
          <p>Thank you for creating an account with {{.LabName}}. You can now browse our tests and book home sample collection or clinic visits online.</p>
          <p style="text-align: center; margin: 30px 0;"><a href="{{.Link}}" style="padding: 14px 28px; background-color: #059669; color: #ffffff; text-decoration: none; border-radius: 6px;">Browse Tests</a></p>
{{template "footer" .}}{{end}}

{{define "user.password_reset"}}{{template "header" .}}
          <p>We received a request to reset your password. Use the button below to choose a new one. This link expires in {{.ExpiresIn}}.</p>
          <p style="text-align: center; margin: 30px 0;"><a href="{{.Link}}" style="padding: 14px 28px; background-color: #059669; color: #ffffff; text-decoration: none; border-radius: 6px;">Reset Password</a></p>
          <p style="color: #6b7280; font-size: 14px;">If you did not request a password reset, you can ignore this email.</p>
{{template "footer" .}}{{end}}
`

// RenderedEmail is a ready-to-send message
type RenderedEmail struct {
	Subject string
	HTML    string
}

type emailData struct {
	Title       string
	LabName     string
	Name        string
	BookingID   string
	Link        string
	TypeText    string
	Schedule    string
	Tests       []entity.PayloadTest
	Total       string
	OldStatus   string
	NewStatus   string
	StatusColor template.CSS
	Notes       string
	ExpiresIn   string
}

// EmailRenderer turns outbox entries into HTML emails
type EmailRenderer struct {
	baseURL string
	tmpl    *template.Template
}

func NewEmailRenderer(baseURL string) *EmailRenderer {
	return &EmailRenderer{
		baseURL: strings.TrimRight(baseURL, "/"),
		tmpl:    template.Must(template.New("email").Parse(emailLayout)),
	}
}

// Render builds the subject and body for entry. labName is the current
// display name of the lab.
func (r *EmailRenderer) Render(entry *entity.NotificationOutbox, labName string) (*RenderedEmail, error) {
	data := emailData{LabName: labName}
	var subject string

	switch entry.Kind {
	case entity.NotificationBookingCreated:
		var p entity.BookingCreatedPayload
		if err := entry.DecodePayload(&p); err != nil {
			return nil, err
		}
		subject = "Booking Confirmed - " + p.BookingID
		data.Title = "Booking Confirmed"
		data.Name = p.Name
		data.BookingID = p.BookingID
		data.Link = r.baseURL + "/bookings/" + p.BookingID
		data.TypeText = bookingTypeText(p.BookingType)
		data.Schedule = scheduleText(p.BookingDate, p.BookingTime)
		data.Tests = p.Tests
		data.Total = p.TotalAmount

	case entity.NotificationBookingStatusChanged:
		var p entity.BookingStatusChangedPayload
		if err := entry.DecodePayload(&p); err != nil {
			return nil, err
		}
		subject = "Booking Status Updated - " + p.BookingID
		data.Title = "Booking Status Updated"
		data.Name = p.Name
		data.BookingID = p.BookingID
		data.Link = r.baseURL + "/bookings/" + p.BookingID
		data.OldStatus = statusLabel(p.OldStatus)
		data.NewStatus = statusLabel(p.NewStatus)
		data.StatusColor = template.CSS(statusColor(p.NewStatus))
		data.Notes = p.Notes

	case entity.NotificationUserWelcome:
		var p entity.WelcomePayload
		if err := entry.DecodePayload(&p); err != nil {
			return nil, err
		}
		subject = fmt.Sprintf("Welcome to %s!", labName)
		data.Title = "Welcome to " + labName + "!"
		data.Name = p.Name
		data.Link = r.baseURL + "/tests"

	case entity.NotificationPasswordReset:
		var p entity.PasswordResetPayload
		if err := entry.DecodePayload(&p); err != nil {
			return nil, err
		}
		subject = "Reset Your Password - " + labName
		data.Title = "Reset Your Password"
		data.Name = p.Name
		data.Link = r.baseURL + "/reset-password?token=" + p.Token
		data.ExpiresIn = fmt.Sprintf("%d minutes", p.ExpiresInMinutes)

	default:
		return nil, fmt.Errorf("unknown notification kind %q", entry.Kind)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, string(entry.Kind), data); err != nil {
		return nil, err
	}

	return &RenderedEmail{Subject: subject, HTML: strings.TrimSpace(buf.String())}, nil
}

func bookingTypeText(t string) string {
	if t == string(entity.BookingTypeHomeCollection) {
		return "Home Sample Collection"
	}
	return "Clinic Visit"
}

func scheduleText(date, timeOfDay string) string {
	if date == "" {
		return "To be scheduled"
	}
	if timeOfDay == "" {
		return date
	}
	return date + " at " + timeOfDay
}

func statusLabel(s string) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return s
}

func statusColor(s string) string {
	if color, ok := statusColors[s]; ok {
		return color
	}
	return "#6b7280"
}
