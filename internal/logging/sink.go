package logging

// Sink is a named logger value. Each rebuilt transcode command gets its own
// Sink; sinks are never serialized.
type Sink struct {
	prefix string
}

// NewSink returns a Sink whose lines are prefixed with "[name] ".
func NewSink(name string) *Sink {
	if name == "" {
		return &Sink{}
	}
	return &Sink{prefix: "[" + name + "] "}
}

// Prefix returns the string prepended to every message.
func (s *Sink) Prefix() string {
	return s.prefix
}

func (s *Sink) Debug(format string, args ...interface{}) {
	Debug(s.prefix+format, args...)
}

func (s *Sink) Info(format string, args ...interface{}) {
	Info(s.prefix+format, args...)
}

func (s *Sink) Warn(format string, args ...interface{}) {
	Warn(s.prefix+format, args...)
}

func (s *Sink) Error(format string, args ...interface{}) {
	Error(s.prefix+format, args...)
}
