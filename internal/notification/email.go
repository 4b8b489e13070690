package notification

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"
	"time"

	"github.com/plantops/plantwatch/internal/database"
	"github.com/plantops/plantwatch/internal/protocol"
	"github.com/plantops/plantwatch/pkg/config"
)

// Notification kinds recorded in the delivery log
const (
	KindAlert       = "alert"
	KindCalibration = "calibration"
)

// EmailNotifier sends plain-text email to the configured recipients and
// records every delivery outcome.
type EmailNotifier struct {
	config *config.SMTPConfig
	db     *database.DB
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg *config.SMTPConfig, db *database.DB) *EmailNotifier {
	return &EmailNotifier{config: cfg, db: db}
}

// SendAlertNotification renders and sends an alert email to every active
// recipient subscribed to alert mail. Per-recipient failures are logged and
// do not stop the remaining sends.
func (e *EmailNotifier) SendAlertNotification(notification *protocol.AlertNotification) error {
	var subject string
	var body string
	var err error

	switch notification.Type {
	case protocol.AlertTypeTriggered:
		subject = fmt.Sprintf("Alert TRIGGERED - %s %s at %s",
			notification.ParameterKey, notification.Severity, notification.SiteName)
		body, err = e.renderTriggeredTemplate(notification)
	case protocol.AlertTypeEscalated:
		subject = fmt.Sprintf("Alert ESCALATED to alarm - %s at %s",
			notification.ParameterKey, notification.SiteName)
		body, err = e.renderTriggeredTemplate(notification)
	case protocol.AlertTypeCleared:
		subject = fmt.Sprintf("Alert CLEARED - %s at %s",
			notification.ParameterKey, notification.SiteName)
		body, err = e.renderClearedTemplate(notification)
	default:
		return fmt.Errorf("unknown notification type: %s", notification.Type)
	}

	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return e.sendToRecipients(database.AlertTypesAlerts, KindAlert, subject, body)
}

// CalibrationReminder is the template payload for one due schedule.
type CalibrationReminder struct {
	SiteName   string
	Instrument string
	Parameter  string
	NextDueAt  time.Time
	Status     string
	DaysUntil  int
}

// SendCalibrationReminders sends one digest email listing every schedule in
// the due window.
func (e *EmailNotifier) SendCalibrationReminders(reminders []CalibrationReminder) error {
	if len(reminders) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Calibration reminders - %d instrument(s) due", len(reminders))
	body, err := e.renderCalibrationTemplate(reminders)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return e.sendToRecipients(database.AlertTypesCalibration, KindCalibration, subject, body)
}

func (e *EmailNotifier) renderTriggeredTemplate(notification *protocol.AlertNotification) (string, error) {
	tmpl := `
Process Alert
=============

Site: {{.SiteName}}
Parameter: {{.ParameterKey}}
Severity: {{.Severity}}
Current Value: {{.Value}}
Threshold Crossed: {{.Direction}} bound {{.Threshold}}
Triggered At: {{.TriggeredAt}}
Alert ID: {{.AlertID}}

{{if .Playbook}}Suggested actions:
{{range $i, $step := .Playbook}}  {{inc $i}}. {{$step}}
{{end}}{{end}}
Please acknowledge this alert in the dashboard and take appropriate action.

---
PlantWatch Notification System
`

	t, err := template.New("triggered").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, notification); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (e *EmailNotifier) renderClearedTemplate(notification *protocol.AlertNotification) (string, error) {
	tmpl := `
Process Alert Cleared
=====================

Site: {{.SiteName}}
Parameter: {{.ParameterKey}}
Alert ID: {{.AlertID}}

The {{.ParameterKey}} reading at {{.SiteName}} has returned within its
configured bands. The alert has been resolved automatically.

---
PlantWatch Notification System
`

	t, err := template.New("cleared").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, notification); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (e *EmailNotifier) renderCalibrationTemplate(reminders []CalibrationReminder) (string, error) {
	tmpl := `
Instrument Calibration Reminders
================================
{{range .}}
Site: {{.SiteName}}
Instrument: {{.Instrument}} ({{.Parameter}})
Status: {{.Status}} ({{.NextDueAt.Format "2006-01-02"}})
{{end}}
Please schedule the calibrations above and log the results in the dashboard.

---
PlantWatch Notification System
`

	t, err := template.New("calibration").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, reminders); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// sendToRecipients delivers one message to every matching recipient and
// records each attempt in the delivery log.
func (e *EmailNotifier) sendToRecipients(filter, kind, subject, body string) error {
	recipients, err := e.db.ActiveRecipientsFor(filter)
	if err != nil {
		return fmt.Errorf("failed to load recipients: %w", err)
	}

	if len(recipients) == 0 {
		fmt.Printf("No active recipients for %s mail, skipping: %s\n", kind, subject)
		return nil
	}

	var failed int
	for _, recipient := range recipients {
		sendErr := e.sendEmail(recipient.Email, subject, body)

		logEntry := &database.EmailLog{
			RecipientEmail: recipient.Email,
			Subject:        subject,
			Kind:           kind,
			Status:         database.EmailStatusSent,
			SentAt:         time.Now(),
		}
		if sendErr != nil {
			failed++
			errMsg := sendErr.Error()
			logEntry.Status = database.EmailStatusFailed
			logEntry.Error = &errMsg
			fmt.Printf("Failed to send to %s: %v\n", recipient.Email, sendErr)
		}

		if err := e.db.InsertEmailLog(logEntry); err != nil {
			fmt.Printf("Failed to record email log: %v\n", err)
		}
	}

	if failed == len(recipients) {
		return fmt.Errorf("all %d deliveries failed", failed)
	}
	return nil
}

func (e *EmailNotifier) sendEmail(to, subject, body string) error {
	// Skip sending if SMTP is not configured
	if e.config.Username == "" || e.config.Password == "" {
		fmt.Printf("SMTP not configured, skipping email to %s:\nSubject: %s\n%s\n", to, subject, body)
		return nil
	}

	var message strings.Builder
	fmt.Fprintf(&message, "From: %s\r\n", e.config.From)
	fmt.Fprintf(&message, "To: %s\r\n", to)
	fmt.Fprintf(&message, "Subject: %s\r\n", subject)
	fmt.Fprintf(&message, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	message.WriteString("\r\n")
	message.WriteString(body)

	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	if err := smtp.SendMail(addr, auth, e.config.From, []string{to}, []byte(message.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// TestConnection tests the SMTP connection
func (e *EmailNotifier) TestConnection() error {
	if e.config.Username == "" {
		return fmt.Errorf("SMTP not configured")
	}

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	fmt.Println("SMTP connection test successful")
	return nil
}
