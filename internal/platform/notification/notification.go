// Package notification delivers patient-facing email with template
// rendering and an in-memory delivery log. The scheduling package talks to
// it through its Notifier interface; delivery failures are reported back and
// never block the operation that triggered them.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification is a single outbound message and its delivery outcome.
type Notification struct {
	ID           string            `json:"id"`
	Recipient    string            `json:"recipient"`
	Subject      string            `json:"subject"`
	Body         string            `json:"body"`
	TemplateID   string            `json:"template_id,omitempty"`
	TemplateData map[string]string `json:"template_data,omitempty"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// EmailSender is the delivery backend. Production wires an SMTP or provider
// implementation; development uses LogSender and tests use MockEmailSender.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// -- Template Engine --

// Template defines a reusable message template. Placeholders use {{key}}
// syntax and are replaced from the data map at render time.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// TemplateEngine manages message templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// TemplateReminder is the template the scheduling package renders for
// appointment reminders.
const TemplateReminder = "appointment-reminder"

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      TemplateReminder,
			Name:    "Appointment Reminder",
			Subject: "Appointment Reminder",
			Body:    "This is a reminder of your upcoming appointment on {{when}}. Please arrive ten minutes early.",
		},
		{
			ID:      "appointment-booked",
			Name:    "Appointment Booked",
			Subject: "Appointment Confirmed",
			Body:    "Your appointment on {{when}} has been booked.",
		},
		{
			ID:      "appointment-canceled",
			Name:    "Appointment Canceled",
			Subject: "Appointment Canceled",
			Body:    "Your appointment on {{when}} has been canceled. Contact the clinic to rebook.",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using
// the supplied data map. Keys present in the template but absent from data
// are left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// -- Manager --

// Manager renders, dispatches, and logs notifications. The in-memory log
// backs the operational endpoints; it is not durable storage.
type Manager struct {
	sender    EmailSender
	templates *TemplateEngine

	mu            sync.RWMutex
	notifications map[string]*Notification
}

func NewManager(sender EmailSender, templates *TemplateEngine) *Manager {
	return &Manager{
		sender:        sender,
		templates:     templates,
		notifications: make(map[string]*Notification),
	}
}

// SendReminder renders the appointment reminder template and delivers it.
// It satisfies the scheduling package's Notifier interface.
func (m *Manager) SendReminder(ctx context.Context, recipient, whenText string) error {
	_, err := m.SendFromTemplate(ctx, TemplateReminder, map[string]string{"when": whenText}, recipient)
	return err
}

// Send dispatches a notification, assigns an ID and timestamps, and records
// the outcome in the delivery log.
func (m *Manager) Send(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now().UTC()
	n.Status = "pending"

	if n.Recipient == "" {
		n.Status = "failed"
		n.Error = "recipient is empty"
	} else if err := m.sender.SendEmail(ctx, n.Recipient, n.Subject, n.Body); err != nil {
		n.Status = "failed"
		n.Error = err.Error()
	} else {
		n.Status = "sent"
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
	}

	m.mu.Lock()
	m.notifications[n.ID] = n
	m.mu.Unlock()

	if n.Error != "" {
		return errors.New(n.Error)
	}
	return nil
}

// SendFromTemplate renders a template and sends the resulting notification.
func (m *Manager) SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*Notification, error) {
	subject, body, err := m.templates.Render(templateID, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	n := &Notification{
		Recipient:    recipient,
		Subject:      subject,
		Body:         body,
		TemplateID:   templateID,
		TemplateData: data,
	}

	if err := m.Send(ctx, n); err != nil {
		return n, err
	}
	return n, nil
}

// Get retrieves a logged notification by ID.
func (m *Manager) Get(_ context.Context, id string) (*Notification, error) {
	m.mu.RLock()
	n, ok := m.notifications[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("notification %q not found", id)
	}
	return n, nil
}

// ListByRecipient returns logged notifications for a recipient, up to limit.
func (m *Manager) ListByRecipient(_ context.Context, recipient string, limit int) ([]*Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Notification
	for _, n := range m.notifications {
		if n.Recipient == recipient {
			result = append(result, n)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

// Retry re-sends a failed notification. Returns an error if the
// notification is not in failed status.
func (m *Manager) Retry(ctx context.Context, id string) error {
	m.mu.RLock()
	n, ok := m.notifications[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("notification %q not found", id)
	}
	if n.Status != "failed" {
		return fmt.Errorf("notification %q is not in failed status (current: %s)", id, n.Status)
	}

	sendErr := m.sender.SendEmail(ctx, n.Recipient, n.Subject, n.Body)

	m.mu.Lock()
	if sendErr != nil {
		n.Status = "failed"
		n.Error = sendErr.Error()
	} else {
		n.Status = "sent"
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
		n.Error = ""
	}
	m.mu.Unlock()

	return sendErr
}

// Stats returns counts of logged notifications grouped by status.
func (m *Manager) Stats(_ context.Context) map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[string]int)
	for _, n := range m.notifications {
		stats[n.Status]++
	}
	return stats
}
