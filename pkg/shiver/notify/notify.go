// Package notify delivers operator-facing success and failure messages.
// Delivery is fire-and-forget; nothing here reports errors back.
package notify

import (
	"sync"

	"github.com/cognicore/shiver/internal/logger"
)

// Notifier receives toast-style messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Log writes notifications to a logger.
type Log struct {
	log *logger.Logger
}

// NewLog returns a Notifier backed by l.
func NewLog(l *logger.Logger) *Log {
	return &Log{log: logger.OrDiscard(l).Component("notify")}
}

func (n *Log) Success(msg string) { n.log.WithField("kind", "success").Info(msg) }
func (n *Log) Error(msg string)   { n.log.WithField("kind", "error").Error(msg) }

// Level of a recorded message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Message is one recorded notification.
type Message struct {
	Level Level
	Text  string
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }

func (r *Recorder) add(l Level, msg string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, Message{Level: l, Text: msg})
	r.mu.Unlock()
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

// Reset drops recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.msgs = nil
	r.mu.Unlock()
}

// Tee fans one notification out to several notifiers.
func Tee(ns ...Notifier) Notifier { return tee(ns) }

type tee []Notifier

func (t tee) Success(msg string) {
	for _, n := range t {
		n.Success(msg)
	}
}

func (t tee) Error(msg string) {
	for _, n := range t {
		n.Error(msg)
	}
}
