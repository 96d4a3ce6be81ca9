package orchestrator

import (
	"testing"

	"github.com/justforname/osmo-trx/internal/trx"
)

func TestSpawn(t *testing.T) {
	j := &journal{}
	var started []int

	workers := Spawn(SpawnConfig{
		Channels:  4,
		BasePort:  6000,
		Address:   "10.0.0.1",
		OnStarted: func(cfg trx.Config) { started = append(started, cfg.Channel) },
		Logger:    discardLogger(),
	}, func(cfg trx.Config) Worker {
		j.add("new %d", cfg.Channel)
		return &fakeWorker{j: j, cfg: cfg, done: make(chan struct{})}
	})

	if len(workers) != 4 {
		t.Fatalf("expected 4 workers, got %d", len(workers))
	}

	want := []string{"new 0", "start 0", "new 1", "start 1", "new 2", "start 2", "new 3", "start 3"}
	got := j.snapshot()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %q, got %q (all: %v)", i, want[i], got[i], got)
		}
	}

	for i, w := range workers {
		cfg := w.(*fakeWorker).cfg
		if cfg.Port != 6000+2*i {
			t.Errorf("chan %d: expected port %d, got %d", i, 6000+2*i, cfg.Port)
		}
		if cfg.Primary != (i == 0) {
			t.Errorf("chan %d: primary = %v", i, cfg.Primary)
		}
		if started[i] != i {
			t.Errorf("OnStarted order: %v", started)
		}
	}
}

func TestSpawn_Zero(t *testing.T) {
	workers := Spawn(SpawnConfig{Channels: 0}, func(trx.Config) Worker {
		t.Fatal("factory must not be called")
		return nil
	})
	if len(workers) != 0 {
		t.Errorf("expected no workers, got %d", len(workers))
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateRunning:  "RUNNING",
		StateStopping: "STOPPING",
		StateDraining: "DRAINING",
		StateTornDown: "TORN_DOWN",
		State(42):     "UNKNOWN",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
