package console

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hypebeast/go-osc/osc"

	"github.com/wrenshall/mixcore/internal/catalog"
)

// Default network parameters for a console session.
const (
	// DefaultSendPort is the console's OSC receive port.
	DefaultSendPort = 10023

	// DefaultListenPort is the local port replies arrive on.
	DefaultListenPort = 10024

	// DefaultReadTimeout is how long GetValue waits for a reply.
	DefaultReadTimeout = 2 * time.Second
)

// ConnectionConfig describes one console session.
type ConnectionConfig struct {
	// Host is the console's IP address or hostname.
	Host string

	// SendPort is the console's OSC receive port. Zero means DefaultSendPort.
	SendPort int

	// ListenPort is the local reply port, bound on all interfaces.
	// Zero means DefaultListenPort.
	ListenPort int
}

// Message is one inbound console message: the address it was published on,
// its raw argument list, and when it arrived.
type Message struct {
	Address    string    `json:"address"`
	Arguments  []any     `json:"arguments"`
	ReceivedAt time.Time `json:"received_at"`
}

// Stats holds session statistics for the metrics endpoint.
type Stats struct {
	Connected  bool   `json:"connected"`
	Host       string `json:"host,omitempty"`
	SendPort   int    `json:"send_port,omitempty"`
	ListenPort int    `json:"listen_port,omitempty"`
	MessagesTx uint64 `json:"messages_tx"`
	MessagesRx uint64 `json:"messages_rx"`
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Client owns at most one active console session.
//
// A session consists of an outbound OSC sender towards the console and a UDP
// listener for replies. Every inbound message overwrites its address's slot
// in the response buffer and is handed to the OnMessage callback.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - Connect replaces any prior session atomically; callers that reconnect
//     concurrently get some serialisation of the two sessions, not a blend.
type Client struct {
	catalog *catalog.Catalog
	buffer  *responseBuffer

	// Session state, nil/empty while disconnected.
	mu     sync.Mutex
	cfg    *ConnectionConfig
	sender *osc.Client
	conn   net.PacketConn
	wg     sync.WaitGroup

	// Inbound message and session status callbacks (optional)
	onMessage  func(Message)
	onStatus   func(connected bool)
	callbackMu sync.RWMutex

	// Logger (optional)
	logger   Logger
	loggerMu sync.RWMutex

	// Statistics
	messagesTx atomic.Uint64
	messagesRx atomic.Uint64
}

// New creates a disconnected Client backed by the given catalog.
// The catalog is consulted to validate endpoints and build addresses before
// anything touches the network.
func New(cat *catalog.Catalog) *Client {
	return &Client{
		catalog: cat,
		buffer:  newResponseBuffer(),
	}
}

// Connect establishes a session to the console.
//
// Any prior session is torn down first (its response buffer is cleared), so
// calling Connect twice leaves exactly one active session. It opens the
// outbound sender towards host:sendPort and binds the reply listener on
// 0.0.0.0:listenPort.
//
// Parameters:
//   - cfg: Session parameters; zero ports take the defaults
//
// Returns:
//   - error: ErrConnectionFailed if the listener cannot be bound
func (c *Client) Connect(cfg ConnectionConfig) error {
	if cfg.Host == "" {
		return fmt.Errorf("%w: host is required", ErrConnectionFailed)
	}
	if cfg.SendPort == 0 {
		cfg.SendPort = DefaultSendPort
	}
	if cfg.ListenPort == 0 {
		cfg.ListenPort = DefaultListenPort
	}

	c.mu.Lock()

	// Idempotent reconnect: replace any existing session.
	c.teardownLocked()

	conn, err := net.ListenPacket("udp", fmt.Sprintf("0.0.0.0:%d", cfg.ListenPort))
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: bind listen port %d: %w", ErrConnectionFailed, cfg.ListenPort, err)
	}

	c.cfg = &cfg
	c.sender = osc.NewClient(cfg.Host, cfg.SendPort)
	c.conn = conn

	server := &osc.Server{Dispatcher: &receiveDispatcher{client: c}}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		// Serve returns when the listener is closed by Disconnect/Connect.
		if serveErr := server.Serve(conn); serveErr != nil {
			c.logDebug("listener stopped", "error", serveErr)
		}
	}()
	c.mu.Unlock()

	c.logInfo("console session established",
		"host", cfg.Host,
		"send_port", cfg.SendPort,
		"listen_port", cfg.ListenPort,
	)
	c.notifyStatus(true)
	return nil
}

// Disconnect tears down the active session: closes both sockets, clears the
// connection config, and empties the response buffer. Calling it while
// already disconnected is a no-op, not an error.
func (c *Client) Disconnect() error {
	c.mu.Lock()

	if c.cfg == nil {
		c.mu.Unlock()
		return nil
	}

	c.teardownLocked()
	c.mu.Unlock()

	c.logInfo("console session closed")
	c.notifyStatus(false)
	return nil
}

// teardownLocked closes the current session. Caller must hold c.mu.
func (c *Client) teardownLocked() {
	if c.conn != nil {
		c.conn.Close()
	}
	c.wg.Wait()

	c.cfg = nil
	c.sender = nil
	c.conn = nil
	c.buffer.clear()
}

// IsConnected reports whether a session is active.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg != nil
}

// GetValue queries the current value of an endpoint and waits for the reply.
//
// The query is the bare address with zero arguments (the protocol convention
// for "read"). Any stale buffered reply for the address is discarded before
// sending, so the call only ever returns a reply that arrived after the
// query went out. Concurrent reads of different addresses are independent;
// concurrent reads of the same address share the next reply.
//
// Parameters:
//   - ctx: Context for cancellation
//   - group, endpoint: Catalog keys, exact match
//   - index: 0-based instance index, or catalog.NoIndex
//   - timeout: Reply wait; non-positive means DefaultReadTimeout
//
// Returns:
//   - *Message: The reply, or nil if no reply arrived in time. A timeout is
//     a normal outcome for a quiet console, not an error.
//   - error: ErrNotConnected, ErrInvalidEndpoint, ErrSendFailed, or ctx.Err()
func (c *Client) GetValue(ctx context.Context, group, endpoint string, index int, timeout time.Duration) (*Message, error) {
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}

	c.mu.Lock()
	sender := c.sender
	c.mu.Unlock()
	if sender == nil {
		return nil, ErrNotConnected
	}

	address, err := c.catalog.BuildPath(group, endpoint, index)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	// Register the waiter before sending so a reply faster than this
	// goroutine cannot slip past.
	ch := c.buffer.await(address)
	defer c.buffer.cancel(address, ch)

	if err := sender.Send(osc.NewMessage(address)); err != nil {
		return nil, fmt.Errorf("%w: query %s: %w", ErrSendFailed, address, err)
	}
	c.messagesTx.Add(1)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-ch:
		return &msg, nil
	case <-timer.C:
		c.logDebug("query timed out", "address", address, "timeout", timeout.String())
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SetValue writes a value to an endpoint. Fire-and-forget: the console sends
// no acknowledgement and none is awaited.
//
// The value is encoded per the endpoint's argument type (see EncodeArgument).
// SetValue does not consult the dangerous-endpoint deny-list — confirmation
// policy belongs to the calling surface, the client only guarantees protocol
// correctness.
//
// Parameters:
//   - ctx: Context checked before the send
//   - group, endpoint: Catalog keys, exact match
//   - index: 0-based instance index, or catalog.NoIndex
//   - value: Caller value, encoded per the endpoint's argument type
//
// Returns:
//   - error: ErrNotConnected, ErrInvalidEndpoint, ErrReadOnly,
//     ErrTypeMismatch, ErrSendFailed, or ctx.Err()
func (c *Client) SetValue(ctx context.Context, group, endpoint string, index int, value any) error {
	c.mu.Lock()
	sender := c.sender
	c.mu.Unlock()
	if sender == nil {
		return ErrNotConnected
	}

	spec, err := c.catalog.GetEndpoint(group, endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if spec.ArgumentType == catalog.ArgNone {
		return fmt.Errorf("%w: %s/%s", ErrReadOnly, group, endpoint)
	}

	address, err := c.catalog.BuildPath(group, endpoint, index)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	arg, err := EncodeArgument(spec, value)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg := osc.NewMessage(address)
	msg.Append(arg)
	if err := sender.Send(msg); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrSendFailed, address, err)
	}
	c.messagesTx.Add(1)

	c.logDebug("value written", "address", address, "value", arg)
	return nil
}

// SetOnMessage sets the callback invoked for every inbound console message.
// Panics in the callback are recovered and logged.
func (c *Client) SetOnMessage(callback func(Message)) {
	c.callbackMu.Lock()
	c.onMessage = callback
	c.callbackMu.Unlock()
}

// SetOnStatusChange sets the callback invoked after the session state
// changes: true after Connect succeeds, false after Disconnect. A reconnect
// that replaces an existing session emits a single connected event.
//
// The callback runs outside the client's session lock, so it may safely call
// back into the client (Stats, IsConnected).
func (c *Client) SetOnStatusChange(callback func(connected bool)) {
	c.callbackMu.Lock()
	c.onStatus = callback
	c.callbackMu.Unlock()
}

// notifyStatus invokes the status callback, if set.
func (c *Client) notifyStatus(connected bool) {
	c.callbackMu.RLock()
	callback := c.onStatus
	c.callbackMu.RUnlock()

	if callback != nil {
		callback(connected)
	}
}

// SetLogger sets the logger for this client.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// Stats returns current session statistics.
func (c *Client) Stats() Stats {
	stats := Stats{
		MessagesTx: c.messagesTx.Load(),
		MessagesRx: c.messagesRx.Load(),
	}

	c.mu.Lock()
	if c.cfg != nil {
		stats.Connected = true
		stats.Host = c.cfg.Host
		stats.SendPort = c.cfg.SendPort
		stats.ListenPort = c.cfg.ListenPort
	}
	c.mu.Unlock()

	return stats
}

// HealthCheck verifies a session is active.
func (c *Client) HealthCheck(_ context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// receiveDispatcher feeds every inbound OSC packet into the client.
// The standard dispatcher matches registered address patterns; the client
// wants every message regardless of address, so it brings its own.
type receiveDispatcher struct {
	client *Client
}

// Dispatch implements osc.Dispatcher.
func (d *receiveDispatcher) Dispatch(packet osc.Packet) {
	d.client.handlePacket(packet)
}

// handlePacket unwraps messages and (recursively) bundles.
func (c *Client) handlePacket(packet osc.Packet) {
	switch p := packet.(type) {
	case *osc.Message:
		c.handleMessage(p)
	case *osc.Bundle:
		for _, msg := range p.Messages {
			c.handleMessage(msg)
		}
		for _, bundle := range p.Bundles {
			c.handlePacket(bundle)
		}
	}
}

// handleMessage stores an inbound message and notifies the callback.
func (c *Client) handleMessage(msg *osc.Message) {
	if msg == nil || msg.Address == "" {
		return
	}

	received := Message{
		Address:    msg.Address,
		Arguments:  msg.Arguments,
		ReceivedAt: time.Now(),
	}

	c.messagesRx.Add(1)
	c.buffer.store(received)

	c.callbackMu.RLock()
	callback := c.onMessage
	c.callbackMu.RUnlock()

	if callback != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logError("message callback panic", fmt.Errorf("%v", r))
				}
			}()
			callback(received)
		}()
	}
}

// logInfo logs an info message if logger is set.
func (c *Client) logInfo(msg string, keysAndValues ...any) {
	c.loggerMu.RLock()
	logger := c.logger
	c.loggerMu.RUnlock()

	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logDebug logs a debug message if logger is set.
func (c *Client) logDebug(msg string, keysAndValues ...any) {
	c.loggerMu.RLock()
	logger := c.logger
	c.loggerMu.RUnlock()

	if logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}

// logError logs an error message if logger is set.
func (c *Client) logError(msg string, err error) {
	c.loggerMu.RLock()
	logger := c.logger
	c.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}
