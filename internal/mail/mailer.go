package mail

import (
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/winops-io/opsreport/internal/config"
)

// Message is one outbound HTML report email
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sender delivers report emails. The pipelines depend on this interface
// so tests can capture messages instead of dialing a relay.
type Sender interface {
	Send(msg Message) error
}

// Mailer sends HTML email through an SMTP relay
type Mailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

// New creates a Mailer for the configured relay
func New(cfg config.MailConfig, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// Send delivers one HTML message via the relay. Internal relays
// typically accept unauthenticated submission; TLS is opportunistic.
func (m *Mailer) Send(msg Message) error {
	mm := gomail.NewMsg()
	if err := mm.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid from address %q: %w", m.cfg.From, err)
	}
	if err := mm.To(msg.To); err != nil {
		return fmt.Errorf("invalid to address %q: %w", msg.To, err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody)

	client, err := gomail.NewClient(m.cfg.RelayHost,
		gomail.WithPort(m.cfg.RelayPort),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	m.logger.Info("Sending report email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("relay", fmt.Sprintf("%s:%d", m.cfg.RelayHost, m.cfg.RelayPort)))

	if err := client.DialAndSend(mm); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", m.cfg.RelayHost, err)
	}
	return nil
}

// Resolve applies the test-mode override: in test mode the recipient is
// replaced by the configured test address and the subject is marked,
// regardless of any other parameter
func Resolve(cfg config.MailConfig, subject string, testMode bool) (to, resolvedSubject string) {
	if testMode {
		return cfg.TestRecipient, subject + " (Test)"
	}
	return cfg.To, subject
}
