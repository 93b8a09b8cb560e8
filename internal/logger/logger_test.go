package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWithOptionsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(Options{Environment: "prod", Level: "debug", Output: &buf})

	log.Component("pipeline").With("item", "01ABC").Info("parsed")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if line["component"] != "pipeline" {
		t.Errorf("component field = %v, want pipeline", line["component"])
	}
	if line["item"] != "01ABC" {
		t.Errorf("item field = %v, want 01ABC", line["item"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"WARN":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"bogus":   logrus.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(Options{Level: "info", Output: &buf})

	log.WithError(errors.New("disk full")).Warn("upload failed")
	if !strings.Contains(buf.String(), "disk full") {
		t.Errorf("expected error text in output, got %q", buf.String())
	}

	buf.Reset()
	log.WithError(nil).Info("no error")
	if strings.Contains(buf.String(), "error=") {
		t.Errorf("nil error should not add an error field: %q", buf.String())
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}
	l := Discard()
	if OrDiscard(l) != l {
		t.Error("OrDiscard should return the given logger")
	}
}
