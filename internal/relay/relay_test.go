package relay

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/wrenshall/mixcore/internal/console"
	"github.com/wrenshall/mixcore/internal/infrastructure/mqtt"
)

// mockBus records publishes and subscriptions.
type mockBus struct {
	mu          sync.Mutex
	published   []publishCall
	subscribed  []string
	unsubs      []string
	handlers     map[string]mqtt.MessageHandler
	publishErr   error
	subscribeErr error
}

type publishCall struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

func newMockBus() *mockBus {
	return &mockBus{handlers: make(map[string]mqtt.MessageHandler)}
}

func (m *mockBus) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, publishCall{topic, payload, qos, retained})
	return nil
}

func (m *mockBus) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscribeErr != nil {
		return m.subscribeErr
	}
	m.subscribed = append(m.subscribed, topic)
	m.handlers[topic] = handler
	return nil
}

func (m *mockBus) Unsubscribe(topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsubs = append(m.unsubs, topic)
	return nil
}

func (m *mockBus) lastPublish(t *testing.T) publishCall {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.published) == 0 {
		t.Fatal("nothing published")
	}
	return m.published[len(m.published)-1]
}

// mockConsole scripts GetValue/SetValue outcomes and records calls.
type mockConsole struct {
	mu        sync.Mutex
	connected bool
	reply     *console.Message
	getErr    error
	setErr    error
	setCalls  int
	lastGroup string
	lastIndex int
	lastValue any
}

func (m *mockConsole) GetValue(_ context.Context, group, _ string, index int, _ time.Duration) (*console.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastGroup = group
	m.lastIndex = index
	return m.reply, m.getErr
}

func (m *mockConsole) SetValue(_ context.Context, group, _ string, index int, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	m.lastGroup = group
	m.lastIndex = index
	m.lastValue = value
	return m.setErr
}

func (m *mockConsole) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// deliver feeds a command payload into the relay's subscribed handler.
func deliver(t *testing.T, bus *mockBus, action string, cmd Command) {
	t.Helper()

	bus.mu.Lock()
	handler := bus.handlers[mqtt.Topics{}.AllCommands()]
	bus.mu.Unlock()
	if handler == nil {
		t.Fatal("relay never subscribed to command topics")
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshal command: %v", err)
	}
	if err := handler(mqtt.Topics{}.Command(action), payload); err != nil {
		t.Fatalf("handler error = %v", err)
	}
}

// lastAck decodes the most recent published acknowledgement.
func lastAck(t *testing.T, bus *mockBus) Ack {
	t.Helper()

	pub := bus.lastPublish(t)
	var ack Ack
	if err := json.Unmarshal(pub.payload, &ack); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	return ack
}

// findPublish returns the most recent publish to the given topic.
func findPublish(t *testing.T, bus *mockBus, topic string) publishCall {
	t.Helper()

	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i := len(bus.published) - 1; i >= 0; i-- {
		if bus.published[i].topic == topic {
			return bus.published[i]
		}
	}
	t.Fatalf("nothing published to %s", topic)
	return publishCall{}
}

// publishCount returns how many messages the bus has seen.
func publishCount(bus *mockBus) int {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	return len(bus.published)
}

func TestStartStop(t *testing.T) {
	bus := newMockBus()
	r := New(bus, &mockConsole{}, Config{QoS: 1})

	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if len(bus.subscribed) != 1 || bus.subscribed[0] != "mixcore/command/+" {
		t.Errorf("subscribed to %v, want [mixcore/command/+]", bus.subscribed)
	}

	// Start seeds the retained status topic with the current session state.
	pub := findPublish(t, bus, "mixcore/console/status")
	if !pub.retained {
		t.Error("status publish not retained")
	}
	var status Status
	if err := json.Unmarshal(pub.payload, &status); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if status.Connected {
		t.Error("seeded status connected = true for disconnected console")
	}

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if len(bus.unsubs) != 1 || bus.unsubs[0] != "mixcore/command/+" {
		t.Errorf("unsubscribed from %v, want [mixcore/command/+]", bus.unsubs)
	}
}

func TestHandleMessagePublishesRetainedState(t *testing.T) {
	bus := newMockBus()
	r := New(bus, &mockConsole{}, Config{QoS: 1})

	r.HandleMessage(console.Message{
		Address:    "/enPPCFaderMessage/VirtualMicInputs/enFader/2",
		Arguments:  []any{float32(0.5)},
		ReceivedAt: time.Now(),
	})

	pub := bus.lastPublish(t)
	if pub.topic != "mixcore/state/enPPCFaderMessage/VirtualMicInputs/enFader/2" {
		t.Errorf("state topic = %q", pub.topic)
	}
	if !pub.retained {
		t.Error("state publish not retained")
	}
	if pub.qos != 1 {
		t.Errorf("state qos = %d, want 1", pub.qos)
	}

	var state State
	if err := json.Unmarshal(pub.payload, &state); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if state.Address != "/enPPCFaderMessage/VirtualMicInputs/enFader/2" {
		t.Errorf("state address = %q", state.Address)
	}
	if len(state.Arguments) != 1 {
		t.Errorf("state arguments = %v", state.Arguments)
	}
}

func TestReadCommandOK(t *testing.T) {
	bus := newMockBus()
	con := &mockConsole{reply: &console.Message{
		Address:   "/enPPCFaderMessage/VirtualMicInputs/enFader/0",
		Arguments: []any{float32(0.7)},
	}}
	r := New(bus, con, Config{QoS: 1})
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	idx := 0
	deliver(t, bus, ActionRead, Command{
		RequestID: "req-1",
		Group:     "VirtualMicInputs",
		Endpoint:  "enFader",
		Index:     &idx,
	})

	pub := bus.lastPublish(t)
	if pub.topic != "mixcore/ack/req-1" {
		t.Errorf("ack topic = %q, want mixcore/ack/req-1", pub.topic)
	}
	if pub.retained {
		t.Error("ack must not be retained")
	}

	ack := lastAck(t, bus)
	if ack.Status != AckOK {
		t.Fatalf("ack status = %q, want ok", ack.Status)
	}
	if ack.Address != "/enPPCFaderMessage/VirtualMicInputs/enFader/0" {
		t.Errorf("ack address = %q", ack.Address)
	}
	if con.lastIndex != 0 {
		t.Errorf("console index = %d, want 0", con.lastIndex)
	}

	// The reply values travel on the response topic, not in the ack.
	respPub := findPublish(t, bus, "mixcore/response/req-1")
	if respPub.retained {
		t.Error("response must not be retained")
	}
	var resp Response
	if err := json.Unmarshal(respPub.payload, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Address != "/enPPCFaderMessage/VirtualMicInputs/enFader/0" {
		t.Errorf("response address = %q", resp.Address)
	}
	if len(resp.Arguments) != 1 {
		t.Fatalf("response arguments = %v, want one value", resp.Arguments)
	}
	if got, ok := resp.Arguments[0].(float64); !ok || got < 0.69 || got > 0.71 {
		t.Errorf("response argument = %v, want ~0.7", resp.Arguments[0])
	}
	var rawAck map[string]any
	if err := json.Unmarshal(pub.payload, &rawAck); err != nil {
		t.Fatalf("unmarshal ack payload: %v", err)
	}
	if _, present := rawAck["arguments"]; present {
		t.Error("ack payload carries arguments, want them on the response topic only")
	}
}

func TestReadCommandNoResponse(t *testing.T) {
	bus := newMockBus()
	r := New(bus, &mockConsole{reply: nil}, Config{})
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deliver(t, bus, ActionRead, Command{RequestID: "req-2", Group: "System", Endpoint: "enSampleRate"})

	ack := lastAck(t, bus)
	if ack.Status != AckNoResponse {
		t.Errorf("ack status = %q, want no_response", ack.Status)
	}
	if ack.Error != nil {
		t.Errorf("ack error = %+v, want nil", ack.Error)
	}
}

func TestReadCommandErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"not connected", console.ErrNotConnected, ErrCodeNotConnected},
		{"invalid endpoint", console.ErrInvalidEndpoint, ErrCodeInvalidEndpoint},
		{"send failed", console.ErrSendFailed, ErrCodeSendFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := newMockBus()
			r := New(bus, &mockConsole{getErr: tt.err}, Config{})
			if err := r.Start(); err != nil {
				t.Fatalf("Start() error = %v", err)
			}

			deliver(t, bus, ActionRead, Command{RequestID: "req-3", Group: "G", Endpoint: "enX"})

			ack := lastAck(t, bus)
			if ack.Status != AckError {
				t.Fatalf("ack status = %q, want error", ack.Status)
			}
			if ack.Error == nil || ack.Error.Code != tt.wantCode {
				t.Errorf("ack error = %+v, want code %q", ack.Error, tt.wantCode)
			}
		})
	}
}

func TestWriteCommandOK(t *testing.T) {
	bus := newMockBus()
	con := &mockConsole{}
	r := New(bus, con, Config{})
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deliver(t, bus, ActionWrite, Command{
		RequestID: "req-4",
		Group:     "VirtualMicInputs",
		Endpoint:  "enFader",
		Value:     0.5,
	})

	ack := lastAck(t, bus)
	if ack.Status != AckOK {
		t.Fatalf("ack status = %q, want ok", ack.Status)
	}
	if con.setCalls != 1 {
		t.Errorf("SetValue called %d times, want 1", con.setCalls)
	}
	if con.lastValue != 0.5 {
		t.Errorf("SetValue value = %v, want 0.5", con.lastValue)
	}
	// Omitted index maps to the no-index convention.
	if con.lastIndex >= 0 {
		t.Errorf("SetValue index = %d, want negative sentinel", con.lastIndex)
	}
}

func TestWriteCommandConfirmationGate(t *testing.T) {
	bus := newMockBus()
	con := &mockConsole{}
	r := New(bus, con, Config{})
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deliver(t, bus, ActionWrite, Command{
		RequestID: "req-5",
		Group:     "System",
		Endpoint:  "enReboot",
		Value:     1,
	})

	ack := lastAck(t, bus)
	if ack.Status != AckError {
		t.Fatalf("ack status = %q, want error", ack.Status)
	}
	if ack.Error == nil || ack.Error.Code != ErrCodeConfirmationRequired {
		t.Fatalf("ack error = %+v, want confirmation_required", ack.Error)
	}
	// The rejected write never reaches the console.
	if con.setCalls != 0 {
		t.Errorf("SetValue called %d times, want 0", con.setCalls)
	}

	// With confirm:true the same write goes through.
	deliver(t, bus, ActionWrite, Command{
		RequestID: "req-6",
		Group:     "System",
		Endpoint:  "enReboot",
		Value:     1,
		Confirm:   true,
	})

	ack = lastAck(t, bus)
	if ack.Status != AckOK {
		t.Fatalf("confirmed ack status = %q, want ok", ack.Status)
	}
	if con.setCalls != 1 {
		t.Errorf("SetValue called %d times, want 1", con.setCalls)
	}
}

func TestCommandMissingKeys(t *testing.T) {
	bus := newMockBus()
	r := New(bus, &mockConsole{}, Config{})
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deliver(t, bus, ActionWrite, Command{RequestID: "req-7", Group: "System"})

	ack := lastAck(t, bus)
	if ack.Error == nil || ack.Error.Code != ErrCodeInvalidPayload {
		t.Fatalf("ack error = %+v, want invalid_payload", ack.Error)
	}
}

func TestMalformedPayloadDropped(t *testing.T) {
	bus := newMockBus()
	r := New(bus, &mockConsole{}, Config{})
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	before := publishCount(bus)
	handler := bus.handlers[mqtt.Topics{}.AllCommands()]
	if err := handler(mqtt.Topics{}.Command(ActionRead), []byte("{not json")); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if got := publishCount(bus); got != before {
		t.Errorf("published %d messages for malformed payload, want 0", got-before)
	}
}

func TestUnknownActionIgnored(t *testing.T) {
	bus := newMockBus()
	r := New(bus, &mockConsole{}, Config{})
	if err := r.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	before := publishCount(bus)
	handler := bus.handlers[mqtt.Topics{}.AllCommands()]
	if err := handler("mixcore/command/reboot", []byte(`{}`)); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if got := publishCount(bus); got != before {
		t.Errorf("published %d messages for unknown action, want 0", got-before)
	}
}

func TestPublishStatus(t *testing.T) {
	bus := newMockBus()
	r := New(bus, &mockConsole{}, Config{QoS: 1})

	r.PublishStatus(true)

	pub := findPublish(t, bus, "mixcore/console/status")
	if !pub.retained {
		t.Error("status publish not retained")
	}
	if pub.qos != 1 {
		t.Errorf("status qos = %d, want 1", pub.qos)
	}

	var status Status
	if err := json.Unmarshal(pub.payload, &status); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if !status.Connected {
		t.Error("status connected = false after PublishStatus(true)")
	}
	if status.Timestamp.IsZero() {
		t.Error("status timestamp is zero")
	}
}
