package lead

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/jordan-wright/email"

	"github.com/Simplici0/nebula-roi/internal/roi"
)

func TestNotifier_SendsSummary(t *testing.T) {
	logger, _ := newTestLogger()
	n := NewNotifier(SMTPConfig{
		Host: "smtp.example.com",
		Port: "587",
		From: "roi@example.com",
		To:   "sales@example.com",
	}, logger)

	var sent *email.Email
	var sentAddr string
	n.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		sent, sentAddr = e, addr
		if auth != nil {
			t.Fatalf("expected no auth without username")
		}
		return nil
	}

	l := Lead{
		Email:     "buyer@example.com",
		Mode:      roi.ModeLease,
		Savings:   3960,
		CreatedAt: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
	}
	if err := n.Submit(context.Background(), l); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if sentAddr != "smtp.example.com:587" {
		t.Fatalf("addr = %q", sentAddr)
	}
	if sent.To[0] != "sales@example.com" || sent.From != "roi@example.com" {
		t.Fatalf("unexpected envelope: %+v", sent)
	}
	body := string(sent.Text)
	for _, expected := range []string{"Email: buyer@example.com", "Scenario: lease", "$3,960.00", "2026-02-03 04:05:06 UTC"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected body to contain %q, got: %s", expected, body)
		}
	}
}

func TestNotifier_WrapsSendError(t *testing.T) {
	logger, _ := newTestLogger()
	n := NewNotifier(SMTPConfig{Host: "smtp.example.com", Port: "25", Username: "u", Password: "p", To: "s@example.com"}, logger)
	sendErr := errors.New("connection refused")
	n.send = func(*email.Email, string, smtp.Auth) error { return sendErr }

	err := n.Submit(context.Background(), Lead{Email: "a@b.c"})
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}
