package radio

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubDevice — Device с заданным результатом Open.
type stubDevice struct {
	mode    Mode
	openErr error
	args    string
}

func (s *stubDevice) Open(args string) (Mode, error) {
	s.args = args
	return s.mode, s.openErr
}

func (s *stubDevice) Read(context.Context, int) (Block, error) { return Block{}, nil }
func (s *stubDevice) Close() error                             { return nil }

func TestBootstrap_Normal(t *testing.T) {
	dev := &stubDevice{mode: ModeNormal}

	mode, err := Bootstrap(dev, "serial=31A0F1C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != ModeNormal {
		t.Errorf("expected normal, got %s", mode)
	}
	if dev.args != "serial=31A0F1C" {
		t.Errorf("args must be passed verbatim, got %q", dev.args)
	}
}

func TestBootstrap_OpenFailed(t *testing.T) {
	dev := &stubDevice{openErr: errors.New("no devices found")}

	_, err := Bootstrap(dev, "")
	if !errors.Is(err, ErrDeviceOpenFailed) {
		t.Errorf("expected ErrDeviceOpenFailed, got %v", err)
	}
	if errors.Is(err, ErrUnsupportedMode) {
		t.Error("open failure must not look like unsupported mode")
	}
}

func TestBootstrap_UnsupportedMode(t *testing.T) {
	for _, mode := range []Mode{ModeResamp, ModeUnknown} {
		dev := &stubDevice{mode: mode}

		got, err := Bootstrap(dev, "")
		if !errors.Is(err, ErrUnsupportedMode) {
			t.Errorf("%s: expected ErrUnsupportedMode, got %v", mode, err)
		}
		if errors.Is(err, ErrDeviceOpenFailed) {
			t.Errorf("%s: unsupported mode must not look like open failure", mode)
		}
		if got != mode {
			t.Errorf("expected reported mode %s, got %s", mode, got)
		}
	}
}

func TestVirtualDevice_Args(t *testing.T) {
	cases := []struct {
		args    string
		mode    Mode
		wantErr bool
	}{
		{"", ModeNormal, false},
		{"mode=normal", ModeNormal, false},
		{"mode=resamp", ModeResamp, false},
		{"mode=resamp, tick=1ms, noise=0.5", ModeResamp, false},
		{"mode=weird", ModeUnknown, true},
		{"tick=-1s", ModeUnknown, true},
		{"serial=123", ModeUnknown, true},
		{"garbage", ModeUnknown, true},
	}

	for _, tc := range cases {
		dev := NewVirtualDevice()
		mode, err := dev.Open(tc.args)
		if (err != nil) != tc.wantErr {
			t.Errorf("Open(%q) error = %v, wantErr %v", tc.args, err, tc.wantErr)
			continue
		}
		if mode != tc.mode {
			t.Errorf("Open(%q) mode = %s, want %s", tc.args, mode, tc.mode)
		}
		if err == nil {
			dev.Close()
		}
	}
}

func TestVirtualDevice_ReadAdvancesClock(t *testing.T) {
	dev := NewVirtualDevice()
	if _, err := dev.Open("tick=1ms"); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dev.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var last Block
	for i := 0; i < 9; i++ {
		b, err := dev.Read(ctx, 3)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if len(b.Bursts) != 3 {
			t.Fatalf("expected 3 bursts, got %d", len(b.Bursts))
		}
		if len(b.Bursts[0]) != BurstLen {
			t.Fatalf("expected burst of %d samples, got %d", BurstLen, len(b.Bursts[0]))
		}
		last = b
	}

	// 9 тактов: кадр 1, слот 0
	if last.FN != 1 || last.TN != 0 {
		t.Errorf("expected FN=1 TN=0, got FN=%d TN=%d", last.FN, last.TN)
	}
}

func TestVirtualDevice_CloseTwice(t *testing.T) {
	dev := NewVirtualDevice()
	if _, err := dev.Open(""); err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := dev.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := dev.Close(); !errors.Is(err, ErrDeviceClosed) {
		t.Errorf("expected ErrDeviceClosed, got %v", err)
	}
	if _, err := dev.Read(context.Background(), 1); !errors.Is(err, ErrDeviceClosed) {
		t.Errorf("expected ErrDeviceClosed on read, got %v", err)
	}
}

func TestVirtualDevice_OpenTwice(t *testing.T) {
	dev := NewVirtualDevice()
	if _, err := dev.Open(""); err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dev.Close()

	if _, err := dev.Open(""); !errors.Is(err, ErrDeviceAlreadyOpen) {
		t.Errorf("expected ErrDeviceAlreadyOpen, got %v", err)
	}
}

func TestInterface_Close(t *testing.T) {
	r := NewInterface(&stubDevice{}, 2)

	if r.Channels() != 2 {
		t.Errorf("expected 2 channels, got %d", r.Channels())
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := r.Close(); !errors.Is(err, ErrInterfaceClosed) {
		t.Errorf("expected ErrInterfaceClosed, got %v", err)
	}
	if _, err := r.ReadBlock(context.Background()); !errors.Is(err, ErrInterfaceClosed) {
		t.Errorf("expected ErrInterfaceClosed on read, got %v", err)
	}
}
