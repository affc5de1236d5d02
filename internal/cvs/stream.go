package cvs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cv-backend/internal/resumes"
	"cv-backend/internal/shared/server/middleware"
	"cv-backend/internal/shared/telemetry"
)

var heartbeatInterval = 15 * time.Second

func (h *Handler) streamList(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	snapshots := newLatest()
	unsubscribe, err := h.svc.SubscribeCvs(ctx, ownerID, func(recs []resumes.Record) {
		snapshots.push(ListResponse{Items: recs})
	})
	if err != nil {
		writeError(c, err)
		return
	}
	defer unsubscribe()
	serveSnapshots(c, snapshots)
}

func (h *Handler) streamOne(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)

	ctx := c.Request.Context()
	snapshots := newLatest()
	unsubscribe, err := h.svc.SubscribeCv(ctx, id, ownerID, func(rec *resumes.Record) {
		snapshots.push(rec)
	})
	if err != nil {
		writeError(c, err)
		return
	}
	defer unsubscribe()
	serveSnapshots(c, snapshots)
}

// latest is a one-slot mailbox where a newer snapshot replaces an unsent one.
type latest struct {
	ch chan any
}

func newLatest() *latest {
	return &latest{ch: make(chan any, 1)}
}

func (l *latest) push(v any) {
	for {
		select {
		case l.ch <- v:
			return
		default:
			select {
			case <-l.ch:
			default:
			}
		}
	}
}

func serveSnapshots(c *gin.Context, snapshots *latest) {
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ctx := c.Request.Context()
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			w.Flush()
		case snap := <-snapshots.ch:
			raw, err := json.Marshal(snap)
			if err != nil {
				telemetry.Warn("cvs.stream.marshal_failed", map[string]any{"error": err.Error()})
				continue
			}
			if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", raw); err != nil {
				return
			}
			w.Flush()
		}
	}
}
