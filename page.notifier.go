package main

import (
	"time"

	"go.uber.org/zap"
)

// NoticeKind is the severity of a user notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Notifier displays transient messages to the user. Notify never blocks.
type Notifier interface {
	Notify(kind NoticeKind, message string)
}

// Notice is a message delivered to the console.
type Notice struct {
	Kind    NoticeKind
	Message string
	At      time.Time
}

// Notifiers fans a notice out to every notifier.
type Notifiers []Notifier

func (ns Notifiers) Notify(kind NoticeKind, message string) {
	for _, n := range ns {
		n.Notify(kind, message)
	}
}

type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier provides a notifier writing notices to the logs.
func NewLogNotifier(logger *zap.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (ln *logNotifier) Notify(kind NoticeKind, message string) {
	switch kind {
	case NoticeError:
		ln.logger.Error("notice", zap.String("notice.kind", string(kind)), zap.String("notice.message", message))
	case NoticeWarning:
		ln.logger.Warn("notice", zap.String("notice.kind", string(kind)), zap.String("notice.message", message))
	default:
		ln.logger.Info("notice", zap.String("notice.kind", string(kind)), zap.String("notice.message", message))
	}
}

// ConsoleNotifier queues notices for the terminal interface. Notices are
// dropped when the queue is full.
type ConsoleNotifier struct {
	clock   Clocker
	notices chan Notice
}

// NewConsoleNotifier provides a notifier holding up to size pending notices.
func NewConsoleNotifier(clock Clocker, size int) *ConsoleNotifier {
	return &ConsoleNotifier{clock: clock, notices: make(chan Notice, size)}
}

func (cn *ConsoleNotifier) Notify(kind NoticeKind, message string) {
	select {
	case cn.notices <- Notice{Kind: kind, Message: message, At: cn.clock.Now()}:
	default:
	}
}

// Notices returns the channel the interface reads from.
func (cn *ConsoleNotifier) Notices() <-chan Notice {
	return cn.notices
}
