package shutdown

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestFlag_RaiseIsSticky(t *testing.T) {
	var f Flag
	if f.IsRaised() {
		t.Fatal("new flag must not be raised")
	}

	f.Raise()
	f.Raise()

	if !f.IsRaised() {
		t.Error("flag should stay raised")
	}
}

func TestFlag_PollReturnsAfterRaise(t *testing.T) {
	var f Flag

	go func() {
		time.Sleep(20 * time.Millisecond)
		f.Raise()
	}()

	done := make(chan struct{})
	go func() {
		f.Poll(context.Background(), 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Poll did not return after Raise")
	}
}

func TestFlag_PollContextCancelRaises(t *testing.T) {
	var f Flag
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.Poll(ctx, time.Hour)

	if !f.IsRaised() {
		t.Error("cancelled context should raise the flag")
	}
}

func TestInstall_SignalRaisesFlag(t *testing.T) {
	var f Flag
	var captured chan<- os.Signal

	notify := func(c chan<- os.Signal, sigs ...os.Signal) error {
		if len(sigs) != 2 || sigs[0] != syscall.SIGINT || sigs[1] != syscall.SIGTERM {
			t.Errorf("unexpected signals: %v", sigs)
		}
		captured = c
		return nil
	}

	h, err := InstallWith(&f, notify)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer h.Stop()

	captured <- syscall.SIGTERM

	deadline := time.Now().Add(2 * time.Second)
	for !f.IsRaised() {
		if time.Now().After(deadline) {
			t.Fatal("flag not raised after signal")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestInstall_RegistrationFailure(t *testing.T) {
	var f Flag
	notify := func(chan<- os.Signal, ...os.Signal) error {
		return errors.New("sigaction: operation not permitted")
	}

	_, err := InstallWith(&f, notify)
	if !errors.Is(err, ErrSignalSetup) {
		t.Errorf("expected ErrSignalSetup, got %v", err)
	}
	if f.IsRaised() {
		t.Error("flag must not be raised")
	}
}

func TestInstall_NilFlag(t *testing.T) {
	if _, err := Install(nil); !errors.Is(err, ErrSignalSetup) {
		t.Errorf("expected ErrSignalSetup, got %v", err)
	}
}
