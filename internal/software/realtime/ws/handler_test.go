package ws

import (
	"errors"
	"testing"
	"time"
)

func TestPingLoopStopsWhenDoneCloses(t *testing.T) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	done := make(chan struct{})

	finished := make(chan struct{})
	go func() {
		pingLoop(ticker, done, func(time.Time) error { return nil }, func() {})
		close(finished)
	}()

	// simulates the read loop returning on disconnect
	close(done)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("ping loop kept running after done was closed")
	}
}

func TestPingLoopClosesConnOnPingFailure(t *testing.T) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	done := make(chan struct{})

	closed := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		pingLoop(ticker, done, func(time.Time) error { return errors.New("write: broken pipe") }, func() { close(closed) })
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("ping loop kept running after a failed ping")
	}
	select {
	case <-closed:
	default:
		t.Fatal("failed ping did not close the connection")
	}
}
