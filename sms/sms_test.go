package sms

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	var s Sender = NewLogSender(log)
	if err := s.Send(context.Background(), "+15550001111", "code 123456"); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "+15550001111") || !strings.Contains(out, "code 123456") {
		t.Fatalf("message not logged: %q", out)
	}
}
