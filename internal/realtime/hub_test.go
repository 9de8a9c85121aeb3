package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/consciousness-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubDeliversOnlyToSubscribedChannel(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	alice, bob := uuid.New(), uuid.New()

	clientA := hub.NewSSEClient(alice)
	hub.AddChannel(clientA, UserChannel(alice))
	clientB := hub.NewSSEClient(bob)
	hub.AddChannel(clientB, UserChannel(bob))

	hub.Broadcast(SSEMessage{Channel: UserChannel(alice), Event: SSEEventAnalysisReady, Data: map[string]any{"seq": 1}})

	got := recvMessage(t, clientA.Outbound, time.Second)
	if got.Event != SSEEventAnalysisReady {
		t.Fatalf("event: want=%s got=%s", SSEEventAnalysisReady, got.Event)
	}
	select {
	case msg := <-clientB.Outbound:
		t.Fatalf("bob received a message for alice: %+v", msg)
	default:
	}
}

func TestSSEHubReconnectAfterClose(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	userID := uuid.New()
	channel := UserChannel(userID)

	clientA := hub.NewSSEClient(userID)
	hub.AddChannel(clientA, channel)
	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}

	clientB := hub.NewSSEClient(userID)
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventAnalysisReady})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventAnalysisReady {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventAnalysisReady, got.Event)
	}
}

func TestSSEHubServeHTTPWritesEvents(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	userID := uuid.New()
	client := hub.NewSSEClient(userID)
	hub.AddChannel(client, UserChannel(userID))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.ServeHTTP(rec, req, client)
	}()

	hub.Broadcast(SSEMessage{Channel: UserChannel(userID), Event: SSEEventAnalysisReady, Data: map[string]any{"reflectionId": "r1"}})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && len(client.Outbound) > 0 {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content type: got=%q", got)
	}
	if !strings.Contains(body, "event: analysis_ready\n") {
		t.Fatalf("missing event line in body: %q", body)
	}
	if !strings.Contains(body, `"reflectionId":"r1"`) {
		t.Fatalf("missing data in body: %q", body)
	}
}

func TestCloseClientTwiceIsSafe(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, UserChannel(client.UserID))

	hub.CloseClient(client)
	hub.CloseClient(client)

	if n := hub.Subscribers(UserChannel(client.UserID)); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}
}

func TestWriteEventFraming(t *testing.T) {
	var b strings.Builder
	err := writeEvent(&b, SSEMessage{Channel: "user:x", Event: SSEEventAnalysisReady, Data: map[string]any{"ok": true}})
	if err != nil {
		t.Fatalf("writeEvent: %v", err)
	}
	out := b.String()
	if !strings.HasPrefix(out, "event: "+string(SSEEventAnalysisReady)+"\ndata: {") || !strings.HasSuffix(out, "}\n\n") {
		t.Fatalf("unexpected framing: %q", out)
	}
}
