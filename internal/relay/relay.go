package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wrenshall/mixcore/internal/catalog"
	"github.com/wrenshall/mixcore/internal/console"
	"github.com/wrenshall/mixcore/internal/infrastructure/mqtt"
)

// Bus is the MQTT surface the relay needs. Satisfied by *mqtt.Client;
// narrowed to an interface so tests can substitute a recorder.
type Bus interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Console is the console surface the relay needs. Satisfied by
// *console.Client.
type Console interface {
	GetValue(ctx context.Context, group, endpoint string, index int, timeout time.Duration) (*console.Message, error)
	SetValue(ctx context.Context, group, endpoint string, index int, value any) error
	IsConnected() bool
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Relay bridges the console session onto the MQTT bus.
//
// Inbound console messages are mirrored as retained state topics so new
// subscribers immediately see the last known value of every address that
// has spoken. Commands arriving on the bus are executed against the console
// and acknowledged per request ID.
//
// Writes to endpoints on the dangerous deny-list are rejected unless the
// command carries confirm:true; the rejection never reaches the console.
type Relay struct {
	bus     Bus
	console Console
	qos     byte
	logger  Logger
}

// Config holds relay construction parameters.
type Config struct {
	// QoS is the quality-of-service level for published messages.
	QoS byte

	// Logger receives relay diagnostics (optional).
	Logger Logger
}

// New creates a relay over the given bus and console session.
func New(bus Bus, con Console, cfg Config) *Relay {
	return &Relay{
		bus:     bus,
		console: con,
		qos:     cfg.QoS,
		logger:  cfg.Logger,
	}
}

// Start subscribes to the command topics and seeds the retained console
// status topic with the current session state. Call HandleMessage from the
// console's message callback to activate the state mirror.
func (r *Relay) Start() error {
	topic := mqtt.Topics{}.AllCommands()
	if err := r.bus.Subscribe(topic, r.qos, r.handleCommand); err != nil {
		return fmt.Errorf("relay: subscribe %s: %w", topic, err)
	}
	r.PublishStatus(r.console.IsConnected())
	return nil
}

// Stop unsubscribes from the command topics.
func (r *Relay) Stop() error {
	topic := mqtt.Topics{}.AllCommands()
	if err := r.bus.Unsubscribe(topic); err != nil {
		return fmt.Errorf("relay: unsubscribe %s: %w", topic, err)
	}
	return nil
}

// HandleMessage mirrors one inbound console message onto the bus as a
// retained state topic. Wire it to console.Client.SetOnMessage.
func (r *Relay) HandleMessage(msg console.Message) {
	state := State{
		Address:   msg.Address,
		Arguments: msg.Arguments,
		Timestamp: msg.ReceivedAt.UTC(),
	}

	payload, err := json.Marshal(state)
	if err != nil {
		r.logError("marshal state", "address", msg.Address, "error", err)
		return
	}

	topic := mqtt.Topics{}.ConsoleState(msg.Address)
	if err := r.bus.Publish(topic, payload, r.qos, true); err != nil {
		r.logError("publish state", "topic", topic, "error", err)
	}
}

// handleCommand parses and executes one command from the bus.
func (r *Relay) handleCommand(topic string, payload []byte) error {
	action := strings.TrimPrefix(topic, TopicPrefixCommand()+"/")
	if action != ActionRead && action != ActionWrite {
		r.logWarn("unknown command action", "topic", topic)
		return nil
	}

	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		r.logWarn("malformed command payload", "topic", topic, "error", err)
		// No request ID to ack against; drop it.
		return nil
	}

	var (
		ack  Ack
		resp *Response
	)
	switch action {
	case ActionRead:
		ack, resp = r.executeRead(cmd)
	case ActionWrite:
		ack = r.executeWrite(cmd)
	}

	if resp != nil {
		r.publishResponse(*resp)
	}
	r.publishAck(ack)
	return nil
}

// executeRead performs a read command against the console. On a successful
// read the ack signals the outcome and the reply values are returned as a
// Response for the response topic.
func (r *Relay) executeRead(cmd Command) (Ack, *Response) {
	if cmd.Group == "" || cmd.Endpoint == "" {
		return newAckError(cmd, ActionRead, "", ErrCodeInvalidPayload, "group and endpoint are required"), nil
	}

	timeout := time.Duration(cmd.TimeoutMS) * time.Millisecond
	msg, err := r.console.GetValue(context.Background(), cmd.Group, cmd.Endpoint, indexOf(cmd), timeout)
	if err != nil {
		return newAckError(cmd, ActionRead, "", errorCode(err), err.Error()), nil
	}
	if msg == nil {
		return newAck(cmd, ActionRead, "", AckNoResponse), nil
	}

	resp := &Response{
		RequestID: cmd.RequestID,
		Address:   msg.Address,
		Arguments: msg.Arguments,
		Timestamp: msg.ReceivedAt.UTC(),
	}
	return newAck(cmd, ActionRead, msg.Address, AckOK), resp
}

// executeWrite performs a write command against the console, enforcing the
// confirmation gate for deny-listed endpoints.
func (r *Relay) executeWrite(cmd Command) Ack {
	if cmd.Group == "" || cmd.Endpoint == "" {
		return newAckError(cmd, ActionWrite, "", ErrCodeInvalidPayload, "group and endpoint are required")
	}

	if console.IsDangerous(cmd.Endpoint) && !cmd.Confirm {
		r.logWarn("dangerous write rejected", "endpoint", cmd.Endpoint, "request_id", cmd.RequestID)
		return newAckError(cmd, ActionWrite, "", ErrCodeConfirmationRequired,
			fmt.Sprintf("%s requires confirm:true", cmd.Endpoint))
	}

	err := r.console.SetValue(context.Background(), cmd.Group, cmd.Endpoint, indexOf(cmd), cmd.Value)
	if err != nil {
		return newAckError(cmd, ActionWrite, "", errorCode(err), err.Error())
	}

	return newAck(cmd, ActionWrite, "", AckOK)
}

// publishAck publishes the acknowledgement for one command.
func (r *Relay) publishAck(ack Ack) {
	payload, err := json.Marshal(ack)
	if err != nil {
		r.logError("marshal ack", "request_id", ack.RequestID, "error", err)
		return
	}

	topic := mqtt.Topics{}.Ack(ack.RequestID)
	if err := r.bus.Publish(topic, payload, r.qos, false); err != nil {
		r.logError("publish ack", "topic", topic, "error", err)
	}
}

// publishResponse publishes the reply values of one successful read.
func (r *Relay) publishResponse(resp Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		r.logError("marshal response", "request_id", resp.RequestID, "error", err)
		return
	}

	topic := mqtt.Topics{}.Response(resp.RequestID)
	if err := r.bus.Publish(topic, payload, r.qos, false); err != nil {
		r.logError("publish response", "topic", topic, "error", err)
	}
}

// PublishStatus publishes the console session state as a retained message,
// so subscribers learn the state on connect without waiting for a change.
// Wire it to console.Client.SetOnStatusChange.
func (r *Relay) PublishStatus(connected bool) {
	status := Status{
		Connected: connected,
		Timestamp: time.Now().UTC(),
	}

	payload, err := json.Marshal(status)
	if err != nil {
		r.logError("marshal status", "error", err)
		return
	}

	topic := mqtt.Topics{}.ConsoleStatus()
	if err := r.bus.Publish(topic, payload, r.qos, true); err != nil {
		r.logError("publish status", "topic", topic, "error", err)
	}
}

// TopicPrefixCommand returns the command topic base without the action.
func TopicPrefixCommand() string {
	return mqtt.TopicPrefix + "/command"
}

// indexOf maps the optional command index onto the catalog convention.
func indexOf(cmd Command) int {
	if cmd.Index == nil {
		return catalog.NoIndex
	}
	return *cmd.Index
}

// errorCode maps console errors onto wire error codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, console.ErrNotConnected):
		return ErrCodeNotConnected
	case errors.Is(err, console.ErrInvalidEndpoint):
		return ErrCodeInvalidEndpoint
	case errors.Is(err, console.ErrReadOnly):
		return ErrCodeReadOnly
	case errors.Is(err, console.ErrTypeMismatch):
		return ErrCodeTypeMismatch
	default:
		return ErrCodeSendFailed
	}
}

// logWarn logs a warning if a logger is set.
func (r *Relay) logWarn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}

// logError logs an error if a logger is set.
func (r *Relay) logError(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Error(msg, args...)
	}
}
