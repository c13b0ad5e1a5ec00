package realtime

import (
	"encoding/json"
	"sync"

	"watch-tracker/domain/model"

	"github.com/gin-gonic/gin"
)

// ProgressEvent is the SSE payload pushed after each tracker mutation.
type ProgressEvent struct {
	Type     string                 `json:"type"`
	Snapshot model.ProgressSnapshot `json:"snapshot"`
}

// ProgressHub fans progress snapshots out to connected SSE clients.
type ProgressHub struct {
	mu   sync.RWMutex
	subs map[chan ProgressEvent]struct{}
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{subs: make(map[chan ProgressEvent]struct{})}
}

// Serve streams events to the client until it disconnects. The initial
// snapshot is sent right away so the client does not wait for a mutation.
func (h *ProgressHub) Serve(c *gin.Context, initial model.ProgressSnapshot) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan ProgressEvent, 8)
	h.addSubscriber(ch)
	defer h.removeSubscriber(ch)

	writeEvent(c, ProgressEvent{Type: "progress", Snapshot: initial})

	for {
		select {
		case evt := <-ch:
			writeEvent(c, evt)
		case <-c.Request.Context().Done():
			return
		}
	}
}

func writeEvent(c *gin.Context, evt ProgressEvent) {
	data, _ := json.Marshal(evt)
	_, _ = c.Writer.Write([]byte("event: " + evt.Type + "\n"))
	_, _ = c.Writer.Write([]byte("data: "))
	_, _ = c.Writer.Write(data)
	_, _ = c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

func (h *ProgressHub) addSubscriber(ch chan ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[ch] = struct{}{}
}

func (h *ProgressHub) removeSubscriber(ch chan ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, ch)
}

// Subscribers returns the number of connected clients.
func (h *ProgressHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// BroadcastProgress sends the snapshot to every client. Slow clients miss
// events rather than block the tracker.
func (h *ProgressHub) BroadcastProgress(snapshot model.ProgressSnapshot) {
	evt := ProgressEvent{Type: "progress", Snapshot: snapshot}
	h.mu.RLock()
	for ch := range h.subs {
		select { // non-blocking
		case ch <- evt:
		default:
		}
	}
	h.mu.RUnlock()
}
