package runner

import "time"

// Stage describes a step in processing one log.
type Stage string

const (
	// StageRead is reading the log file.
	StageRead Stage = "read"
	// StageParse is dispatching and parsing the log.
	StageParse Stage = "parse"
	// StagePublish is persisting state after publication.
	StagePublish Stage = "publish"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the log is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the log is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the log was processed.
	StatusDone Status = "done"
	// StatusSkipped indicates latexmk reported every target up to date.
	StatusSkipped Status = "skipped"
	// StatusError indicates processing failed.
	StatusError Status = "error"
)

// Event reports progress for a log (or for the whole run when Log is empty).
type Event struct {
	Log     string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

type nopSink struct{}

func (nopSink) OnEvent(Event) {}
