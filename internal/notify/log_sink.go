package notify

import "log"

// LogSink writes each notification to the standard logger.
type LogSink struct {
	logger *log.Logger
}

// NewLogSink creates a LogSink. A nil logger uses the standard logger.
func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Notify logs the event.
func (s *LogSink) Notify(event Event) {
	if s.logger == nil {
		log.Printf("[notify] %s %s/%s: %s", event.Kind, event.Collection, event.Action, event.Message)
		return
	}
	s.logger.Printf("[notify] %s %s/%s: %s", event.Kind, event.Collection, event.Action, event.Message)
}
