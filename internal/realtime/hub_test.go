package realtime

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/export"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

func recvMessage(t *testing.T, ch <-chan Message, timeout time.Duration) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return Message{}
}

func TestHubOrderingAndReconnect(t *testing.T) {
	hub := NewHub(logger.Nop())
	channel := SessionChannel("s1")

	a := hub.NewClient()
	hub.AddChannel(a, channel)
	hub.Broadcast(Message{Channel: channel, Event: EventExportStatus, Data: 1})
	hub.Broadcast(Message{Channel: channel, Event: EventUnitChanged, Data: 2})

	if got := recvMessage(t, a.Outbound, time.Second); got.Event != EventExportStatus {
		t.Fatalf("first event: want=%s got=%s", EventExportStatus, got.Event)
	}
	if got := recvMessage(t, a.Outbound, time.Second); got.Event != EventUnitChanged {
		t.Fatalf("second event: want=%s got=%s", EventUnitChanged, got.Event)
	}

	hub.CloseClient(a)
	if _, ok := <-a.Outbound; ok {
		t.Fatalf("outbound should be closed after disconnect")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("want no subscribers got=%d", n)
	}

	b := hub.NewClient()
	hub.AddChannel(b, channel)
	hub.Broadcast(Message{Channel: channel, Event: EventExportStatus})
	recvMessage(t, b.Outbound, time.Second)
}

func TestHubIsolatesSessions(t *testing.T) {
	hub := NewHub(logger.Nop())
	a, b := hub.NewClient(), hub.NewClient()
	hub.AddChannel(a, SessionChannel("a"))
	hub.AddChannel(b, SessionChannel("b"))
	hub.Broadcast(Message{Channel: SessionChannel("a"), Event: EventExportStatus})
	recvMessage(t, a.Outbound, time.Second)
	select {
	case m := <-b.Outbound:
		t.Fatalf("session b got a message for a: %+v", m)
	default:
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(logger.Nop())
	c := hub.NewClient()
	hub.AddChannel(c, "x")
	for i := 0; i < outboundBuffer+5; i++ {
		hub.Broadcast(Message{Channel: "x", Event: EventExportStatus, Data: i})
	}
	if len(c.Outbound) != outboundBuffer {
		t.Fatalf("want buffer full at %d got=%d", outboundBuffer, len(c.Outbound))
	}
}

type failingBroker struct{ calls int }

func (f *failingBroker) Publish(context.Context, Message) error {
	f.calls++
	return errors.New("redis down")
}

func TestPublisherFallsBackToLocalHub(t *testing.T) {
	hub := NewHub(logger.Nop())
	c := hub.NewClient()
	hub.AddChannel(c, SessionChannel("s1"))
	broker := &failingBroker{}
	p := NewPublisher(logger.Nop(), hub, broker)

	p.PublishStatus(context.Background(), "s1", export.StatusEvent{Target: "pdf", State: "in_progress"})
	got := recvMessage(t, c.Outbound, time.Second)
	ev, ok := got.Data.(export.StatusEvent)
	if broker.calls != 1 || !ok || ev.Target != "pdf" {
		t.Fatalf("want local delivery after broker failure got=%+v calls=%d", got, broker.calls)
	}
}

func TestServeHTTPStreamsEvents(t *testing.T) {
	hub := NewHub(logger.Nop())
	c := hub.NewClient()
	hub.AddChannel(c, SessionChannel("s1"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeHTTP(w, r, c)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: got %s", ct)
	}

	hub.Broadcast(Message{Channel: SessionChannel("s1"), Event: EventExportStatus, Data: map[string]string{"target": "docx"}})

	sc := bufio.NewScanner(resp.Body)
	var sawEvent, sawData bool
	for sc.Scan() {
		line := sc.Text()
		if line == "event: ExportStatus" {
			sawEvent = true
		}
		if strings.HasPrefix(line, "data: ") && strings.Contains(line, `"target":"docx"`) {
			sawData = true
			break
		}
	}
	if !sawEvent || !sawData {
		t.Fatalf("want event and data lines event=%v data=%v", sawEvent, sawData)
	}
	hub.CloseClient(c)
}
