package websocket

// Semaphore caps the number of concurrent moderation connections. Acquire is
// non-blocking so an overloaded node rejects upgrades instead of queueing
// them.
type Semaphore struct {
	slots chan struct{}
}

func NewSemaphore(maxConnections int) *Semaphore {
	return &Semaphore{
		slots: make(chan struct{}, maxConnections),
	}
}

func (s *Semaphore) Acquire() bool {
	select {
	case s.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Semaphore) Release() {
	select {
	case <-s.slots:
	default:
	}
}

func (s *Semaphore) Active() int {
	return len(s.slots)
}
