package referrer

import "time"

// Static is a Channel that answers with a fixed payload, optionally after a
// delay. Used by the CLI device profiles and tests.
type Static struct {
	Info  Info
	Err   error
	Delay time.Duration
}

func (s Static) Request(cb Callback) error {
	if s.Delay <= 0 {
		go cb(s.Info, s.Err)
		return nil
	}
	time.AfterFunc(s.Delay, func() { cb(s.Info, s.Err) })
	return nil
}
