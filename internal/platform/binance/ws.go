package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/arbot/internal/domain"
)

const (
	// writeWait is the time allowed to write a control message to the peer.
	writeWait = 10 * time.Second

	// readWait bounds silence on the socket. Binance pings roughly every 3
	// minutes; the pong/ping handlers extend the deadline.
	readWait = 5 * time.Minute

	// pingPeriod sends client pings to keep intermediaries from idling out
	// the connection. Must be less than readWait.
	pingPeriod = 2 * time.Minute
)

// BookTickerHandler is called for every decoded top-of-book update.
type BookTickerHandler func(BookTicker)

// DepthHandler is called for every decoded partial-depth snapshot.
type DepthHandler func(DepthSnapshot)

// WSClient reads Binance combined market streams. The subscribed streams are
// encoded in the connection URL, so there is no subscribe handshake; a client
// is single-use — on read failure it reports the error and the owner dials a
// fresh one.
type WSClient struct {
	endpoint string
	streams  []string

	onBookTicker BookTickerHandler
	onDepth      DepthHandler

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	done chan struct{}
	err  error
}

// NewWSClient creates a client for the given combined-stream endpoint (e.g.
// "wss://stream.binance.com:9443/stream") and stream names.
func NewWSClient(endpoint string, streams []string) *WSClient {
	return &WSClient{
		endpoint: endpoint,
		streams:  streams,
		done:     make(chan struct{}),
	}
}

// OnBookTicker registers the top-of-book handler. Must be called before
// Connect.
func (w *WSClient) OnBookTicker(h BookTickerHandler) { w.onBookTicker = h }

// OnDepth registers the partial-depth handler. Must be called before Connect.
func (w *WSClient) OnDepth(h DepthHandler) { w.onDepth = h }

// Connect dials the combined-stream URL and starts the read and ping loops.
func (w *WSClient) Connect(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("binance/ws: %w", domain.ErrWSDisconnect)
	}

	u, err := url.Parse(w.endpoint)
	if err != nil {
		return fmt.Errorf("binance/ws: parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("streams", strings.Join(w.streams, "/"))
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("binance/ws: connect: %w", err)
	}
	w.conn = conn

	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})
	// Binance pings the client; answer and extend the deadline.
	conn.SetPingHandler(func(payload string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return conn.WriteControl(websocket.PongMessage, []byte(payload), time.Now().Add(writeWait))
	})

	go w.readLoop()
	go w.pingLoop()

	return nil
}

// Done is closed when the read loop exits, on failure or Close.
func (w *WSClient) Done() <-chan struct{} { return w.done }

// Err returns the terminal read error, if any, once Done is closed.
func (w *WSClient) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Close shuts down the connection and stops the loops. Safe to call more
// than once.
func (w *WSClient) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.conn != nil {
		_ = w.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)
		return w.conn.Close()
	}
	return nil
}

func (w *WSClient) readLoop() {
	defer w.finish()

	for {
		_, message, err := w.conn.ReadMessage()
		if err != nil {
			w.mu.Lock()
			if !w.closed {
				w.err = fmt.Errorf("binance/ws: read: %w", err)
			}
			w.mu.Unlock()
			return
		}
		w.dispatch(message)
	}
}

func (w *WSClient) finish() {
	w.mu.Lock()
	if w.conn != nil {
		_ = w.conn.Close()
	}
	w.mu.Unlock()
	close(w.done)
}

// dispatch decodes a combined-stream envelope and routes it by stream suffix.
// Undecodable messages are dropped; the stream carries only market data and a
// single bad frame is not worth a disconnect.
func (w *WSClient) dispatch(message []byte) {
	var env combinedMessage
	if err := json.Unmarshal(message, &env); err != nil {
		return
	}
	switch {
	case strings.HasSuffix(env.Stream, "@bookTicker"):
		if w.onBookTicker == nil {
			return
		}
		bt, err := parseBookTicker(env.Data)
		if err != nil {
			return
		}
		w.onBookTicker(bt)
	case strings.Contains(env.Stream, "@depth"):
		if w.onDepth == nil {
			return
		}
		snap, err := parseDepth(env.Stream, env.Data)
		if err != nil {
			return
		}
		w.onDepth(snap)
	}
}

func (w *WSClient) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.mu.Lock()
			conn, closed := w.conn, w.closed
			w.mu.Unlock()
			if closed || conn == nil {
				return
			}
			_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		}
	}
}
