// Package mail delivers alert notifications over SMTP, one message per
// recipient.
package mail

import (
	"context"
	"fmt"
	"html"

	gomail "gopkg.in/gomail.v2"
)

type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func New(host string, port int, username, password, from string) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *Sender) Send(ctx context.Context, to string, subject string, message string, imageURL *string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", renderBody(message, imageURL))

	// gomail puts no deadline on the SMTP conversation, so the send runs in
	// its own goroutine and is abandoned when ctx expires; the stray
	// connection dies with its TCP timeout.
	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send mail to %s: %w", to, ctx.Err())
	}
}

func renderBody(message string, imageURL *string) string {
	body := fmt.Sprintf("<h2>Fire Warning System</h2><p>%s</p>", html.EscapeString(message))
	if imageURL != nil && *imageURL != "" {
		body += fmt.Sprintf(`<p><img src=%q alt="alert snapshot" style="max-width:600px"/></p>`, *imageURL)
	}
	return body
}
