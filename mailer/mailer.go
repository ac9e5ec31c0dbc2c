// Package mailer delivers review notifications to post authors.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sentiment-health/api-go/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer, or a logging one when no SMTP host is configured.
func New(cfg config.SMTPConfig, log *logrus.Logger) Mailer {
	if !cfg.Enabled() {
		return &LogMailer{Log: log}
	}
	return NewSMTPMailer(cfg)
}

type SMTPMailer struct {
	From   string
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		From:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.From)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", PlainText(msg.HTML))
	gm.AddAlternative("text/html", msg.HTML)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer only logs; used in development and when SMTP is off.
type LogMailer struct {
	Log *logrus.Logger
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.Log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("smtp disabled, email not sent")
	return nil
}

// PlainText renders the text content of an HTML body.
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
