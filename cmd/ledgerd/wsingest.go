package main

import (
	"context"
	"encoding/json"
	"net/http"

	"nhooyr.io/websocket"

	"attnledger/core/types"
)

// tabEvent is the wire shape for one C9 tab event delivered over the
// ingestion socket. Grounded on rpc/ws.go's accept-then-loop websocket
// handler shape, adapted from the finality-update subscription stream to a
// client-driven event feed: the browser pushes tab events instead of the
// server pushing updates.
type tabEvent struct {
	Type      string           `json:"type"`
	TabID     uint32           `json:"tab_id"`
	Now       uint64           `json:"now"`
	Snapshot  types.TabSnapshot `json:"snapshot"`
}

func (a *adminAPI) serveTabIngestion(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "ingestion closed")

	if err := a.streamTabEvents(r.Context(), conn); err != nil {
		if status := websocket.CloseStatus(err); status == -1 {
			_ = conn.Close(websocket.StatusInternalError, "ingestion error")
		}
	}
}

func (a *adminAPI) streamTabEvents(ctx context.Context, conn *websocket.Conn) error {
	tabs := a.engine.Tabs()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var evt tabEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			a.logger.Warn("tab ingestion: malformed event", "error", err)
			continue
		}
		dispatchTabEvent(ctx, tabs, evt)
	}
}

type tabAggregator interface {
	OnLoad(snapshot types.TabSnapshot, now uint64)
	OnShow(tabID uint32, now uint64)
	OnHide(ctx context.Context, tabID uint32, now uint64)
	OnUnload(ctx context.Context, tabID uint32, now uint64)
	OnForeground(tabID uint32, now uint64)
	OnBackground(ctx context.Context, tabID uint32, now uint64)
}

func dispatchTabEvent(ctx context.Context, tabs tabAggregator, evt tabEvent) {
	switch evt.Type {
	case "load":
		tabs.OnLoad(evt.Snapshot, evt.Now)
	case "show":
		tabs.OnShow(evt.TabID, evt.Now)
	case "hide":
		tabs.OnHide(ctx, evt.TabID, evt.Now)
	case "unload":
		tabs.OnUnload(ctx, evt.TabID, evt.Now)
	case "foreground":
		tabs.OnForeground(evt.TabID, evt.Now)
	case "background":
		tabs.OnBackground(ctx, evt.TabID, evt.Now)
	}
}
