package handlers

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-cellar-backend/internal/domain"
)

type sseEvent struct {
	name string
	data string
}

// readEvents parses "event:/data:" frames from the stream onto a channel.
// The channel closes when the body ends.
func readEvents(body *bufio.Reader) <-chan sseEvent {
	out := make(chan sseEvent, 16)
	go func() {
		defer close(out)
		var ev sseEvent
		for {
			line, err := body.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\r\n")
			switch {
			case strings.HasPrefix(line, "event:"):
				ev.name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				ev.data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			case line == "" && ev.name != "":
				out <- ev
				ev = sseEvent{}
			}
		}
	}()
	return out
}

func nextSnapshot(t *testing.T, events <-chan sseEvent) []domain.Wine {
	t.Helper()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("stream ended before a snapshot")
			}
			if ev.name != EventSnapshot {
				continue
			}
			var snap SnapshotEvent
			if err := json.Unmarshal([]byte(ev.data), &snap); err != nil {
				t.Fatalf("snapshot payload %q: %v", ev.data, err)
			}
			return snap.Wines
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for a snapshot")
		}
	}
}

func TestStreamCellar_SnapshotsAndLogout(t *testing.T) {
	hs := newHarness(t)
	srv := httptest.NewServer(hs.r)
	defer srv.Close()

	tok := hs.signIn(t, "tok-ada")
	hs.addWine(t, tok, barolo(2))

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/cellar/stream", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		t.Fatalf("stream: %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	events := readEvents(bufio.NewReader(resp.Body))

	first := nextSnapshot(t, events)
	if len(first) != 1 || first[0].Name != "Monfortino" {
		t.Fatalf("initial snapshot: %+v", first)
	}

	// A write from another request shows up as a full snapshot.
	hs.addWine(t, tok, domain.WineFields{Name: "Sancerre", Producer: "Vacheron", Type: domain.White, Quantity: 1})
	second := nextSnapshot(t, events)
	if len(second) != 2 {
		t.Fatalf("snapshot after write: %+v", second)
	}

	// Logout cancels the session's streams.
	if w := hs.do(t, http.MethodDelete, "/session", tok, nil); w.Code != http.StatusNoContent {
		t.Fatalf("logout: %d", w.Code)
	}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("stream still open after logout")
		}
	}
}

func TestStreamCellar_RequiresSession(t *testing.T) {
	hs := newHarness(t)
	w := hs.do(t, http.MethodGet, "/cellar/stream", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous stream: %d", w.Code)
	}
}
