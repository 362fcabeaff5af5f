package sos

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		Send: make(chan []byte, 10),
	}
	hub.register <- client

	alert := map[string]string{"user": "amina", "message": "flat tire on the A1"}
	hub.Broadcast(alert)

	want, _ := json.Marshal(alert)
	select {
	case got := <-client.Send:
		if string(got) != string(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	hub.unregister <- client
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	slow := &Client{Send: make(chan []byte)} // unbuffered, never read
	hub.register <- slow

	hub.Broadcast(map[string]string{"message": "first"})

	select {
	case _, open := <-slow.Send:
		if open {
			t.Fatal("expected slow client channel to be closed")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for slow client to be dropped")
	}
}
