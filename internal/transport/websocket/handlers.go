package websocket

import (
	"net/http"

	"github.com/coder/websocket"
)

// handleUpgrade hands the connection to Accept and keeps the handler alive
// until the session releases it.
func (that *Listener) handleUpgrade(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "handleUpgrade", "remote", req.RemoteAddr)

	if !that.claimed.CompareAndSwap(false, true) {
		log.Warn("refusing extra peer")
		http.Error(writer, "game is full", http.StatusConflict)
		return
	}

	wsConn, err := websocket.Accept(writer, req, nil)
	if err != nil {
		that.claimed.Store(false)
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := newConn(wsConn)
	that.peers <- conn

	log.Info("WebSocket connection established")

	<-conn.Done()
}

// status is reported on the health endpoint.
func (that *Listener) status() string {
	if that.claimed.Load() {
		return "playing"
	}

	return "waiting"
}
