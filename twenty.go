/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// twentyq
//
// A single player picks something and keeps it secret. The language model
// asks up to twenty yes/no questions and tries to guess it.
//
// Features:
// - One game per browser, identified by cookie
// - Optional invitation code before the player is asked for a name
// - Game events over a WebSocket at /ws, full state pushed after each event
// - Idle sessions reaped after a configurable timeout, with token usage logged
// - In-browser QR button to share the game, backed by go-qrcode

package main

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/twentyq/game"
)

const engineUnavailableText = "The game is not set up yet. Please ask a grown-up to add an API key for the guessing engine."

// Messages coming from clients
type ClientMessage struct {
	Type   string `json:"type"`             // "invite", "name", "start", "answer", "reveal", "play_again", "sync"
	Code   string `json:"code,omitempty"`   // invite
	Name   string `json:"name,omitempty"`   // name
	Answer string `json:"answer,omitempty"` // answer: "yes" or "no"
	Item   string `json:"item,omitempty"`   // reveal
}

// StateMessage is the full view of a session, sent after every event.
type StateMessage struct {
	Type          string `json:"type"` // "state"
	State         string `json:"state"`
	PlayerName    string `json:"player_name,omitempty"`
	Message       string `json:"message,omitempty"`
	QuestionCount int    `json:"question_count"`
	MaxQuestions  int    `json:"max_questions"`
	Celebrate     bool   `json:"celebrate,omitempty"`
}

// SimpleMessage is for "thinking" and "error" notices.
type SimpleMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newStateMessage(s *game.Session) StateMessage {
	return StateMessage{
		Type:          "state",
		State:         s.State().String(),
		PlayerName:    s.PlayerName(),
		Message:       s.DisplayMessage(),
		QuestionCount: s.QuestionCount(),
		MaxQuestions:  game.MaxQuestions,
		Celebrate:     s.State() == game.FinishedWin,
	}
}

// thinkingText returns the busy notice for events that call the engine.
func thinkingText(kind string, st game.State) (string, bool) {
	switch {
	case kind == "start" && st == game.ReadyToStart:
		return "Thinking of a good question...", true
	case kind == "answer" && st == game.Playing:
		return "Hmm... let me think...", true
	case kind == "reveal" && st == game.AwaitingReveal:
		return "Reading about it...", true
	}
	return "", false
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string

	mu     sync.Mutex
	closed bool
}

// push queues msg without blocking. It reports false once the client is
// closed or its buffer is full.
func (c *Client) push(msg any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub tracks the open connections for each session id, so a player with
// several tabs sees the same game everywhere.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*Client]bool
}

func newHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]bool),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.playerID]
	if !ok {
		set = make(map[*Client]bool)
		h.clients[c.playerID] = set
	}
	set[c] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.clients[c.playerID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.playerID)
		}
	}
	c.close()
}

func (h *Hub) broadcast(id string, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[id] {
		if !c.push(msg) {
			delete(h.clients[id], c)
			c.close()
		}
	}
}

// closeSession disconnects every client of a torn-down session.
func (h *Hub) closeSession(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[id] {
		c.close()
		_ = c.conn.Close()
	}
	delete(h.clients, id)
}

func (h *Hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "twentyq_id"

func getOrSetPlayerID(cfg *Config, w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()

	path := cfg.prefix
	if path == "" {
		path = "/"
	}

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     path,
		HttpOnly: true,
		Secure:   cfg.scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// engineContext bounds a single engine call by the configured timeout.
func engineContext(cfg *Config) (context.Context, context.CancelFunc) {
	if cfg.engineTimeout > 0 {
		return context.WithTimeout(context.Background(), cfg.engineTimeout)
	}
	return context.WithCancel(context.Background())
}

// handleMessage applies one client event to the player's session and pushes
// the resulting state to every connection of that session.
func handleMessage(cfg *Config, store *game.Store, hub *Hub, c *Client, msg ClientMessage) {
	err := store.Do(c.playerID, func(s *game.Session) error {
		if text, ok := thinkingText(msg.Type, s.State()); ok {
			hub.broadcast(s.ID(), SimpleMessage{Type: "thinking", Message: text})
		}

		// The deadline starts once the session lock is held, so time spent
		// queued behind another tab's event does not count against it.
		ctx, cancel := engineContext(cfg)
		defer cancel()

		var err error

		switch msg.Type {
		case "invite":
			err = s.SubmitInvitation(msg.Code)
		case "name":
			err = s.SubmitName(msg.Name)
		case "start":
			err = s.Start(ctx)
		case "answer":
			a, ok := game.ParseAnswer(msg.Answer)
			if !ok {
				err = game.ErrIgnored
				break
			}
			err = s.Answer(ctx, a)
		case "reveal":
			err = s.Reveal(ctx, msg.Item)
		case "play_again":
			err = s.PlayAgain()
		case "sync":
		default:
			return game.ErrIgnored
		}

		hub.broadcast(s.ID(), newStateMessage(s))

		return err
	})

	switch {
	case err == nil, errors.Is(err, game.ErrIgnored):
	case errors.Is(err, game.ErrEngineUnavailable):
		c.push(SimpleMessage{Type: "error", Message: engineUnavailableText})
	default:
		cfg.log.Error().Err(err).Str("session_id", c.playerID).Str("event", msg.Type).Msg("event failed")
	}
}

func serveWS(cfg *Config, store *game.Store, hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		playerID := getOrSetPlayerID(cfg, w, r)

		conn, err := upgrader.Upgrade(w, r, w.Header())
		if err != nil {
			cfg.log.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 8),
			playerID: playerID,
		}

		hub.register(client)

		logf(cfg, "GAMES: Player %s connected from %s", playerID, realIP(r))

		go client.writePump()

		handleMessage(cfg, store, hub, client, ClientMessage{Type: "sync"})

		client.readPump(cfg, store, hub)
	}
}

func (c *Client) readPump(cfg *Config, store *game.Store, hub *Hub) {
	defer func() {
		hub.unregister(c)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		handleMessage(cfg, store, hub, c, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the game URL using go-qrcode.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		path := strings.TrimSuffix(r.URL.Path, "/qr") + "/"
		url := scheme + "://" + r.Host + path

		const qrSize = 320

		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}

//go:embed twenty/index.html
var indexHTML []byte

func serveIndex(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)
		_ = getOrSetPlayerID(cfg, w, r)

		_, err := w.Write(indexHTML)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Game page to %s in %s", realIP(r), time.Since(startTime).Round(time.Microsecond))
	}
}

// registerTwentyGame sets up routes so that:
//   - $prefix/          → HTML client
//   - $prefix/ws        → WebSocket for the player's session
//   - $prefix/qr        → PNG QR code for the game URL
//   - $prefix/assets/*  → stylesheet and script
func registerTwentyGame(cfg *Config, store *game.Store, mux *httprouter.Router, errs chan<- error) *Hub {
	hub := newHub()

	store.OnTeardown(func(s *game.Session) {
		hub.closeSession(s.ID())
		logf(cfg, "GAMES: Ended session %s", s.ID())
	})

	mux.GET(cfg.prefix+"/", serveIndex(cfg, errs))

	mux.GET(cfg.prefix+"/assets/*asset", serveAssets(cfg, errs))

	mux.GET(cfg.prefix+"/ws", serveWS(cfg, store, hub))

	mux.GET(cfg.prefix+"/qr", qrHandler(cfg))

	return hub
}
