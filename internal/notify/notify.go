// Package notify is the user-facing notification sink — the toast channel of
// the embedding UI. The executor reports mutation outcomes through it and
// nothing else; the UI layer never touches cache internals.
package notify

import (
	"sync"

	"github.com/rs/zerolog/log"
)

type Notifier interface {
	Success(msg string)
	Warning(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to the structured log. Useful for the
// daemon and anywhere no UI is attached.
type LogNotifier struct{}

func (LogNotifier) Success(msg string) { log.Info().Str("kind", "success").Msg(msg) }
func (LogNotifier) Warning(msg string) { log.Warn().Str("kind", "warning").Msg(msg) }
func (LogNotifier) Error(msg string)   { log.Error().Str("kind", "error").Msg(msg) }

// Recorder captures notifications in memory for assertions and for UIs that
// drain them on their own cadence.
type Recorder struct {
	mu       sync.Mutex
	Messages []Message
}

type Message struct {
	Level string // success | warning | error
	Text  string
}

func (r *Recorder) Success(msg string) { r.append("success", msg) }
func (r *Recorder) Warning(msg string) { r.append("warning", msg) }
func (r *Recorder) Error(msg string)   { r.append("error", msg) }

func (r *Recorder) append(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, Message{Level: level, Text: msg})
}

// Drain returns and clears all recorded messages.
func (r *Recorder) Drain() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.Messages
	r.Messages = nil
	return msgs
}
