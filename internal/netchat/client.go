// Package netchat is the multiplayer stub: a plain TCP text connection that
// announces the player and prints whatever the server sends back.
package netchat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// RecvBufferSize bounds a single inbound read.
const RecvBufferSize = 1024

// Client is a best-effort chat connection. Receive failures end the listen
// goroutine silently and drop the connection; nothing reconnects on its own.
type Client struct {
	addr    string
	name    string
	timeout time.Duration
	log     *slog.Logger

	mu        sync.Mutex
	conn      net.Conn
	wg        sync.WaitGroup
	onMessage func(string)
}

// NewClient returns an unconnected client for addr.
func NewClient(addr, name string, timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{addr: addr, name: name, timeout: timeout, log: log}
}

// OnMessage sets a callback run on the listen goroutine for every inbound
// chunk, in addition to logging it. Must be called before Connect.
func (c *Client) OnMessage(fn func(string)) {
	c.mu.Lock()
	c.onMessage = fn
	c.mu.Unlock()
}

// Handshake is the first text sent after connecting.
func Handshake(name string) string {
	return name + " joined the game"
}

// Connect dials the server, starts the listen goroutine and sends the
// handshake. A client whose previous connection was dropped can connect
// again.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return fmt.Errorf("already connected")
	}

	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to connect to %s: %w", c.addr, err)
	}
	c.conn = conn

	c.wg.Add(1)
	go c.listen(conn, c.onMessage)

	_, err = conn.Write([]byte(Handshake(c.name)))
	if err != nil {
		c.conn = nil
	}
	c.mu.Unlock()

	if err != nil {
		conn.Close()
		c.wg.Wait()
		return fmt.Errorf("send handshake: %w", err)
	}
	c.log.Info("connected to chat server", "addr", c.addr)
	return nil
}

func (c *Client) listen(conn net.Conn, onMessage func(string)) {
	defer c.wg.Done()
	defer c.release(conn)

	buf := make([]byte, RecvBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			msg := string(buf[:n])
			c.log.Info(fmt.Sprintf("[Server] %s", msg))
			if onMessage != nil {
				onMessage(msg)
			}
		}
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				c.log.Debug("chat listen ended", "err", err)
			}
			return
		}
	}
}

// release forgets conn once its listener has stopped, unless a newer
// connection already replaced it.
func (c *Client) release(conn net.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == conn {
		c.conn = nil
		conn.Close()
	}
}

// Connected reports whether a connection is live: Connect succeeded and
// neither Close nor a server hangup has ended it since.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close drops the connection and waits for the listen goroutine.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	c.wg.Wait()
	return err
}
