package application

import "time"

// Clock lets services be tested with a fixed time source.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T. Step, if set, is added after every call.
type FixedClock struct {
	T    time.Time
	Step time.Duration
}

func (c *FixedClock) Now() time.Time {
	t := c.T
	c.T = c.T.Add(c.Step)
	return t
}
