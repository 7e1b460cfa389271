package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Test helpers for driving the frame loop by hand.
// This file should only be used for testing and not in production

// newTestClient registers a viewer without a connection; everything sent to
// it lands on its send channel
func newTestClient(s *Server, id int) *Client {
	c := &Client{
		ID:     id,
		server: s,
		send:   make(chan ServerMessage, 1024),
	}
	s.addClient(c)
	return c
}

// drain empties the client's send channel
func drain(c *Client) []ServerMessage {
	var out []ServerMessage
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}

// ofType filters messages by type
func ofType(msgs []ServerMessage, msgType string) []ServerMessage {
	var out []ServerMessage
	for _, m := range msgs {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func rawJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal %v: %v", v, err)
	}
	return data
}

// send applies a message on the loop side, as drainInputs would
func send(t *testing.T, c *Client, msgType string, data interface{}, at time.Time) {
	t.Helper()
	msg := ClientMessage{Type: msgType}
	if data != nil {
		msg.Data = rawJSON(t, data)
	}
	c.handleMessage(msg, at)
}

// bodyNDC projects a body's centre through the client's camera
func bodyNDC(t *testing.T, c *Client, id string) mgl64.Vec2 {
	t.Helper()
	b, ok := c.session.Scene.Registry.Lookup(id)
	if !ok {
		t.Fatalf("No body %q", id)
	}
	ndc, ok := c.session.Camera.Project(b.Position)
	if !ok {
		t.Fatalf("Expected %s in front of the camera", id)
	}
	return ndc
}

func ndcData(p mgl64.Vec2) SelectData {
	x, y := p.X(), p.Y()
	return SelectData{X: &x, Y: &y}
}
