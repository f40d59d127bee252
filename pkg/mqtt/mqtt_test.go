package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestPublishQueuesJSON(t *testing.T) {
	m := New()
	if err := m.Connect(""); err != nil {
		t.Fatal(err)
	}
	if m.Connected() {
		t.Fatal("connected without broker")
	}

	if err := m.Publish("cascade/pad1", map[string]int{"value": 3}); err != nil {
		t.Fatal(err)
	}

	msg := <-m.C
	if msg.Topic != "cascade/pad1" {
		t.Fatalf("topic = %q", msg.Topic)
	}
	var v map[string]int
	if err := json.Unmarshal(msg.Payload, &v); err != nil || v["value"] != 3 {
		t.Fatalf("payload %s: %v", msg.Payload, err)
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	m := New()
	for i := 0; i < queueSize+10; i++ {
		if err := m.Publish("t", i); err != nil {
			t.Fatal(err)
		}
	}
	if len(m.C) != queueSize {
		t.Fatalf("queued %v, want %v", len(m.C), queueSize)
	}
}

func TestPublishMarshalError(t *testing.T) {
	m := New()
	if err := m.Publish("t", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
}

func TestServiceWithoutBrokerDrains(t *testing.T) {
	m := New()
	done := make(chan struct{})
	go func() {
		m.Service()
		close(done)
	}()

	_ = m.Publish("t", 1)
	m.Close()
	<-done
}

func TestPublishAfterClose(t *testing.T) {
	m := New()
	m.Close()
	m.Close()

	if err := m.Publish("t", 1); !errors.Is(err, ErrClosed) {
		t.Fatalf("got %v, want ErrClosed", err)
	}
}
