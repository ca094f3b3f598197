package notification

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// LogSender writes outbound email to the log instead of delivering it.
// Used in development and any environment without a mail provider.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.log.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("email (log sender)")
	return nil
}

// EmailCall records a single SendEmail invocation on the mock.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender records sends for assertions in tests. Set Err to make
// every send fail.
type MockEmailSender struct {
	mu    sync.Mutex
	calls []EmailCall

	Err error
}

func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{}
}

func (s *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.calls = append(s.calls, EmailCall{To: to, Subject: subject, Body: body})
	return nil
}

// Calls returns a copy of the recorded sends.
func (s *MockEmailSender) Calls() []EmailCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EmailCall, len(s.calls))
	copy(out, s.calls)
	return out
}
