package control

import (
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"lyricsync-go/logcolors"
)

// peer is one connected control surface. gorilla connections do not allow
// concurrent writers, so every write goes through the peer's mutex.
type peer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *peer) send(f frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteJSON(f)
}

// Hub tracks connected peers and fans pushes out to all of them.
type Hub struct {
	mu    sync.Mutex
	peers map[*peer]struct{}
}

func NewHub() *Hub {
	return &Hub{peers: make(map[*peer]struct{})}
}

func (h *Hub) add(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p] = struct{}{}
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.peers, p)
}

// PeerCount returns the number of connected control surfaces.
func (h *Hub) PeerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Push broadcasts an out-of-band notification to every peer. Pushes carry no
// correlation token.
func (h *Hub) Push(msgType string, data interface{}) {
	h.broadcast(frame{Type: msgType, Data: data})
}

// broadcast writes a frame to every connected peer. Write failures only log;
// the read loop notices the dead connection and unregisters it.
func (h *Hub) broadcast(f frame) {
	h.mu.Lock()
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()

	for _, p := range peers {
		if err := p.send(f); err != nil {
			log.Debugf("%s Broadcast to peer failed: %v", logcolors.LogControl, err)
		}
	}
}
