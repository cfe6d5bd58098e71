package terminal

import (
	"io"
	"strings"

	"github.com/AndreyAkinshin/livetest/internal/errors"
)

// sink buffers everything written between start and stop and hands it to the
// device in one Write, so another writer of the same file cannot land in the
// middle of a frame. Outside a bracket writes go straight through.
//
// Write errors are dropped: a failed terminal write is indistinguishable from
// a slow one and there is nothing useful to retry.
type sink struct {
	w        io.Writer
	buf      strings.Builder
	batching bool
}

func (s *sink) write(text string) {
	if s.batching {
		s.buf.WriteString(text)
		return
	}
	_, _ = io.WriteString(s.w, text)
}

func (s *sink) start() {
	if s.batching {
		panic(errors.Unreachable("terminal update started twice without StopUpdate"))
	}
	s.buf.Reset()
	s.batching = true
}

func (s *sink) stop() {
	s.batching = false
	if s.buf.Len() == 0 {
		return
	}
	_, _ = io.WriteString(s.w, s.buf.String())
	s.buf.Reset()
}
