package mq

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestNewMessage(t *testing.T) {
	ch := 2
	ev := Event{Type: EventChannelStarted, InstanceID: "abc", Channel: &ch, Port: 5704}

	msg := NewMessage(ev)

	if _, err := uuid.Parse(msg.ID); err != nil {
		t.Errorf("message ID should be a UUID: %v", err)
	}
	if msg.Type != EventChannelStarted {
		t.Errorf("expected type %s, got %s", EventChannelStarted, msg.Type)
	}
	if msg.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
	if NewMessage(ev).ID == msg.ID {
		t.Error("message IDs must be unique")
	}
}

func TestEvent_ChannelZeroIsEncoded(t *testing.T) {
	ch := 0
	body, err := json.Marshal(Event{Type: EventChannelStarted, Channel: &ch, Primary: true})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["channel"] != float64(0) {
		t.Errorf("channel 0 must be present, got %v", decoded["channel"])
	}

	body, _ = json.Marshal(Event{Type: EventStarted, Channels: 4})
	decoded = nil
	json.Unmarshal(body, &decoded)
	if _, ok := decoded["channel"]; ok {
		t.Error("channel should be omitted for process events")
	}
}

func TestWithChannel_NoChannel(t *testing.T) {
	c := &Connection{}
	err := c.WithChannel(nil)
	if err != ErrNoChannel {
		t.Errorf("expected ErrNoChannel, got %v", err)
	}
}
