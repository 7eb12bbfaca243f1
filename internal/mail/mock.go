package mail

import "sync"

// SentMail records one delivery made through the mock mailer.
type SentMail struct {
	To   string
	Name string
	Kind string // "otp" or "welcome"
	OTP  string
}

// MockMailer records sends in memory for tests. FailNext forces the next
// send to return an error.
type MockMailer struct {
	mu       sync.Mutex
	sent     []SentMail
	FailNext error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) SendOTP(to, name, otp string) error {
	return m.record(SentMail{To: to, Name: name, Kind: "otp", OTP: otp})
}

func (m *MockMailer) SendWelcome(to, name string) error {
	return m.record(SentMail{To: to, Name: name, Kind: "welcome"})
}

func (m *MockMailer) record(s SentMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return err
	}

	m.sent = append(m.sent, s)
	return nil
}

// Sent returns a copy of all recorded deliveries.
func (m *MockMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}
