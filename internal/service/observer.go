package service

import "time"

// Observer receives operational events. Satisfied by *metrics.Registry.
type Observer interface {
	FetchCompleted(loud bool, d time.Duration, err error)
	PollTicked()
	ActionDispatched(action string, err error)
}

type nopObserver struct{}

func (nopObserver) FetchCompleted(bool, time.Duration, error) {}
func (nopObserver) PollTicked()                               {}
func (nopObserver) ActionDispatched(string, error)            {}
