package audio

import (
	"sync"
	"sync/atomic"
)

// Token is the per-session stop signal shared by the capture loop and the
// request producer. The zero value is not usable; use NewToken.
type Token struct {
	live atomic.Bool
	done chan struct{}
	once sync.Once
}

func NewToken() *Token {
	t := &Token{done: make(chan struct{})}
	t.live.Store(true)
	return t
}

func (t *Token) Live() bool {
	return t.live.Load()
}

// Stop clears the live flag. It is safe to call more than once.
func (t *Token) Stop() {
	t.once.Do(func() {
		t.live.Store(false)
		close(t.done)
	})
}

func (t *Token) Done() <-chan struct{} {
	return t.done
}
