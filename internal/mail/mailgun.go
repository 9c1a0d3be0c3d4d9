package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// Mailer is the delivery channel for verification codes and reset links.
type Mailer interface {
	SendOTP(email, code string) error
	SendPasswordReset(email, token string) error
}

type Mailgun struct {
	domain  string
	apiKey  string
	apiBase string
	sender  string
}

func NewMailgun(domain, apiKey, apiBase, sender string) *Mailgun {
	return &Mailgun{
		domain:  domain,
		apiKey:  apiKey,
		apiBase: apiBase,
		sender:  sender,
	}
}

func (m *Mailgun) send(subject, body string, to string) error {
	mg := mailgun.NewMailgun(m.domain, m.apiKey)
	if m.apiBase != "" {
		mg.SetAPIBase(m.apiBase)
	}

	message := mg.NewMessage(m.sender, subject, body, to)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, _, err := mg.Send(ctx, message)
	return err
}

func (m *Mailgun) SendOTP(email, code string) error {
	body := fmt.Sprintf("Your verification code is %s. It expires shortly; if you did not request it, ignore this message.", code)
	return m.send("Your verification code", body, email)
}

func (m *Mailgun) SendPasswordReset(email, token string) error {
	body := fmt.Sprintf("Use this token to reset your password: %s", token)
	return m.send("Password reset", body, email)
}
