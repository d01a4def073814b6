package app

import (
	"context"
)

// StartFeedPoller launches the background quote poller. It is a no-op when
// the poller is already running.
func (a *App) StartFeedPoller() {
	if a.feed == nil || a.feedCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.feedCancel = cancel
	a.feedDone = done

	go func() {
		defer close(done)
		a.feed.Run(ctx)
	}()
}

// StopFeedPoller cancels the poller and waits for its in-flight cycle.
func (a *App) StopFeedPoller() {
	if a.feedCancel == nil {
		return
	}
	a.feedCancel()
	<-a.feedDone
	a.feedCancel = nil
	a.feedDone = nil
}
