package tick

import "newtown/kernel/task"

// Sleep is a future that completes once n ticks have passed since it was
// created.
type Sleep struct {
	stream   *Stream
	deadline uint64
	done     bool
}

// NewSleep returns a Sleep for n ticks. Zero ticks completes on first poll.
func NewSleep(src *Source, n uint64) *Sleep {
	st := src.Subscribe()
	return &Sleep{stream: st, deadline: st.Last() + n}
}

// Poll implements task.Future.
func (s *Sleep) Poll(cx *task.Context) task.Status {
	if s.done {
		return task.Completed
	}
	for s.stream.Last() < s.deadline {
		if _, st := s.stream.PollNext(cx); st == task.Suspended {
			return task.Suspended
		}
	}
	s.done = true
	s.stream.Close()
	return task.Completed
}

// Remaining returns the number of ticks left before the sleep completes.
func (s *Sleep) Remaining() uint64 {
	if last := s.stream.Last(); last < s.deadline {
		return s.deadline - last
	}
	return 0
}
