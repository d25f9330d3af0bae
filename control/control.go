package control

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"lyricsync-go/cache"
	"lyricsync-go/logcolors"
	"lyricsync-go/services/acquire"
	"lyricsync-go/settings"
	"lyricsync-go/syncer"
)

const requestTimeout = 30 * time.Second

// frame is one control-channel message. Requests and replies share a token
// so the surface can correlate them; pushes carry no token.
type frame struct {
	Token string      `json:"token,omitempty"`
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
}

// request is the inbound shape; Data stays raw until the type is known.
type request struct {
	Token string          `json:"token"`
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
}

// Handler upgrades control surface connections and answers their queries
// against the live controller, orchestrator and cache.
type Handler struct {
	hub        *Hub
	controller *syncer.Controller
	orch       *acquire.Orchestrator
	cache      *cache.Cache
	blacklist  *settings.BlacklistSet
	settings   *settings.Client
	upgrader   websocket.Upgrader
}

// NewHandler builds the control channel handler. settingsClient may be nil;
// blacklist edits then stay in memory only.
func NewHandler(hub *Hub, controller *syncer.Controller, orch *acquire.Orchestrator,
	lyricCache *cache.Cache, blacklist *settings.BlacklistSet, settingsClient *settings.Client) *Handler {
	return &Handler{
		hub:        hub,
		controller: controller,
		orch:       orch,
		cache:      lyricCache,
		blacklist:  blacklist,
		settings:   settingsClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The control surface is browser-hosted on an arbitrary origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("%s Upgrade failed for %s: %v", logcolors.LogControl, r.RemoteAddr, err)
		return
	}

	p := &peer{conn: conn}
	h.hub.add(p)
	log.Infof("%s Peer connected from %s (%d total)", logcolors.LogControl, r.RemoteAddr, h.hub.PeerCount())

	defer func() {
		h.hub.remove(p)
		conn.Close()
		log.Infof("%s Peer disconnected from %s (%d total)", logcolors.LogControl, r.RemoteAddr, h.hub.PeerCount())
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req request
		if err := json.Unmarshal(msg, &req); err != nil || req.Type == "" {
			// Malformed frames are dropped, the connection stays up.
			log.Warnf("%s Dropping malformed frame from %s", logcolors.LogControl, r.RemoteAddr)
			continue
		}

		// Commands like applySource block on the controller; handling each
		// frame in its own goroutine keeps the read loop responsive.
		go h.dispatch(p, req)
	}
}

func (h *Handler) dispatch(p *peer, req request) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	data, err := h.handle(ctx, req)
	if err != nil {
		log.Warnf("%s %s failed: %v", logcolors.LogControl, req.Type, err)
		if req.Token != "" {
			p.send(frame{Token: req.Token, Type: "error", Data: map[string]string{
				"request": req.Type,
				"message": err.Error(),
			}})
		}
		return
	}

	// Tokenless frames (the position stream) are fire-and-forget.
	if req.Token != "" {
		p.send(frame{Token: req.Token, Type: req.Type, Data: data})
	}
}

func (h *Handler) handle(ctx context.Context, req request) (interface{}, error) {
	switch req.Type {
	case "position":
		var q struct {
			SongID  string  `json:"songId"`
			Title   string  `json:"title"`
			Seconds float64 `json:"seconds"`
			Paused  bool    `json:"paused"`
		}
		if err := json.Unmarshal(req.Data, &q); err != nil {
			return nil, fmt.Errorf("malformed position frame: %w", err)
		}
		h.controller.HandlePosition(syncer.PositionEvent{
			SongID:  q.SongID,
			Title:   q.Title,
			Seconds: q.Seconds,
			Paused:  q.Paused,
		})
		return map[string]bool{"ok": true}, nil

	case "pause":
		h.controller.Pause()
		return map[string]bool{"ok": true}, nil

	case "resume":
		h.controller.Resume()
		return map[string]bool{"ok": true}, nil

	case "title":
		return map[string]string{
			"title": h.controller.CurrentTitle(),
			"state": h.controller.State().String(),
		}, nil

	case "lyrics":
		return map[string]interface{}{
			"title": h.controller.CurrentTitle(),
			"lines": h.controller.CurrentLines(),
		}, nil

	case "search":
		var q struct {
			Title string `json:"title"`
		}
		if err := json.Unmarshal(req.Data, &q); err != nil || q.Title == "" {
			return nil, fmt.Errorf("search needs a title")
		}
		return map[string]interface{}{"results": h.orch.SearchAll(ctx, q.Title)}, nil

	case "lyricsBy":
		var q struct {
			Provider string `json:"provider"`
			Key      string `json:"key"`
		}
		if err := json.Unmarshal(req.Data, &q); err != nil || q.Provider == "" || q.Key == "" {
			return nil, fmt.Errorf("lyricsBy needs provider and key")
		}
		res, err := h.orch.FetchByKey(ctx, q.Provider, q.Key)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"provider": res.Provider, "lines": res.Lines}, nil

	case "cacheList":
		entries, err := h.cache.List()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"entries": entries}, nil

	case "cacheRemove":
		var q struct {
			Key string `json:"key"`
		}
		if err := json.Unmarshal(req.Data, &q); err != nil || q.Key == "" {
			return nil, fmt.Errorf("cacheRemove needs a key")
		}
		if err := h.cache.Remove(q.Key); err != nil {
			return nil, err
		}
		return map[string]bool{"removed": true}, nil

	case "applySource":
		var q struct {
			Provider string `json:"provider"`
			Key      string `json:"key"`
		}
		if err := json.Unmarshal(req.Data, &q); err != nil || q.Provider == "" || q.Key == "" {
			return nil, fmt.Errorf("applySource needs provider and key")
		}
		if err := h.controller.ApplySource(ctx, q.Provider, q.Key); err != nil {
			return nil, err
		}
		return map[string]bool{"applied": true}, nil

	case "blink":
		h.hub.Push("blink", nil)
		return map[string]int{"peers": h.hub.PeerCount()}, nil

	case "blacklistAdd", "blacklistRemove":
		var q struct {
			Title string `json:"title"`
		}
		if err := json.Unmarshal(req.Data, &q); err != nil || q.Title == "" {
			return nil, fmt.Errorf("%s needs a title", req.Type)
		}
		var changed bool
		if req.Type == "blacklistAdd" {
			changed = h.blacklist.Add(q.Title)
		} else {
			changed = h.blacklist.Remove(q.Title)
		}
		if changed {
			if err := h.persistBlacklist(ctx); err != nil {
				return nil, fmt.Errorf("blacklist updated but not persisted: %w", err)
			}
		}
		return map[string]bool{"changed": changed}, nil

	default:
		return nil, fmt.Errorf("unknown request type %q", req.Type)
	}
}

// persistBlacklist writes the in-memory blacklist back through the settings
// endpoint so it survives restarts.
func (h *Handler) persistBlacklist(ctx context.Context) error {
	if h.settings == nil {
		return nil
	}

	current, err := h.settings.Fetch(ctx)
	if err != nil {
		return err
	}
	current.Blacklist = h.blacklist.Titles()
	return h.settings.Save(ctx, current)
}
