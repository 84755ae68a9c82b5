package mqtt

import "fmt"

// Topic prefixes for the mixcore message bus.
//
// The relay mirrors console traffic onto the bus using a flat scheme:
// mixcore/{category}/... where category is state, command, ack, or system.
const (
	// TopicPrefix is the base for all mixcore topics.
	TopicPrefix = "mixcore"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "mixcore/system"
)

// Topics provides builders for mixcore MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.ConsoleState("/enPPCFaderMessage/VirtualMicInputs/enFader/2")
//	// Returns: "mixcore/state/enPPCFaderMessage/VirtualMicInputs/enFader/2"
type Topics struct{}

// ConsoleState returns the topic carrying a console message for one address.
// The leading slash of the OSC address becomes the path separator after the
// state prefix, so addresses map one-to-one onto subtopics.
//
// Example: mixcore/state/enPPCFaderMessage/VirtualMicInputs/enFader/2
func (Topics) ConsoleState(address string) string {
	return TopicPrefix + "/state" + address
}

// Command returns the topic for inbound commands of the given action.
// Actions are "read" and "write".
//
// Example: mixcore/command/write
func (Topics) Command(action string) string {
	return fmt.Sprintf("%s/command/%s", TopicPrefix, action)
}

// Ack returns the topic for the acknowledgement of one command.
//
// Example: mixcore/ack/req-abc123
func (Topics) Ack(requestID string) string {
	return fmt.Sprintf("%s/ack/%s", TopicPrefix, requestID)
}

// Response returns the topic carrying the result of one read command.
// Acks signal the outcome; the reply values travel here.
//
// Example: mixcore/response/req-abc123
func (Topics) Response(requestID string) string {
	return fmt.Sprintf("%s/response/%s", TopicPrefix, requestID)
}

// ConsoleStatus returns the topic carrying console session status.
//
// Example: mixcore/console/status
func (Topics) ConsoleStatus() string {
	return fmt.Sprintf("%s/console/status", TopicPrefix)
}

// SystemStatus returns the service status topic (also the LWT topic).
//
// Example: mixcore/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllCommands returns a pattern matching every command topic.
//
// Pattern: mixcore/command/+
func (Topics) AllCommands() string {
	return fmt.Sprintf("%s/command/+", TopicPrefix)
}
