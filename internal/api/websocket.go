package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"smartbite/internal/cart"
	"smartbite/internal/chat"
	"smartbite/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// Frame types pushed to chat clients
const (
	FrameReply = "reply"
	FrameCart  = "cart"
	FrameError = "error"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are enforced by the CORS layer for browser calls
	},
}

// Frame is one server-to-client message on the chat socket
type Frame struct {
	Type  string         `json:"type"`
	Reply *chat.Reply    `json:"reply,omitempty"`
	Cart  *cart.Snapshot `json:"cart,omitempty"`
	Error string         `json:"error,omitempty"`
}

// chatConn maintains the WebSocket connection of one chat client
type chatConn struct {
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	session *session.Session
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// handleWebSocket upgrades the request to a chat socket bound to the caller's session
func (s *Server) handleWebSocket(c *gin.Context) {
	sess := currentSession(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, http.Header{SessionHeader: []string{sess.ID}})
	if err != nil {
		s.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	wsConn := &chatConn{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		session: sess,
		logger:  s.logger.With(zap.String("session", sess.ID)),
		ctx:     ctx,
		cancel:  cancel,
	}

	unsubscribe := sess.Cart.Subscribe(func(snap cart.Snapshot) {
		wsConn.push(Frame{Type: FrameCart, Cart: &snap})
	})

	snap := sess.Cart.Snapshot()
	wsConn.push(Frame{Type: FrameCart, Cart: &snap})

	go wsConn.writePump()
	go func() {
		wsConn.readPump()
		unsubscribe()
		wsConn.shutdown()
	}()
}

// readPump pumps messages from the WebSocket connection to the bot
func (c *chatConn) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket error", zap.Error(err))
			}
			return
		}
		c.handleMessage(message)
	}
}

// writePump pumps frames from the send buffer to the WebSocket connection
func (c *chatConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// handleMessage answers one inbound chat message in the background.
// Replies may arrive out of order when the client sends faster than the bot answers.
func (c *chatConn) handleMessage(message []byte) {
	var req chatRequest
	if err := json.Unmarshal(message, &req); err != nil {
		c.push(Frame{Type: FrameError, Error: "invalid message: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.push(Frame{Type: FrameError, Error: "text is required"})
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		reply := c.session.Bot.Respond(c.ctx, req.input())
		c.push(Frame{Type: FrameReply, Reply: &reply})
	}()
}

// push queues a frame without blocking; frames are dropped once the buffer is full
func (c *chatConn) push(frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		c.logger.Error("failed to marshal frame", zap.Error(err))
		return
	}

	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.logger.Warn("websocket buffer full, dropping frame", zap.String("type", frame.Type))
	}
}

// shutdown cancels in-flight replies and stops the writer
func (c *chatConn) shutdown() {
	c.once.Do(func() {
		c.cancel()
		c.wg.Wait()
		close(c.done)
	})
}
