package dispatch

import "sync/atomic"

type counter struct {
	atomic.Uint32
}

func newCounter() *counter {
	return &counter{}
}

func (c *counter) increment() uint32 {
	return c.Add(1)
}

func (c *counter) decrement() uint32 {
	return c.Add(^uint32(0))
}
