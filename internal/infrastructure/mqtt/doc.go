// Package mqtt provides MQTT client connectivity for mixcore.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// mixcore mirrors console traffic onto MQTT so that show-control systems
// and dashboards can observe and drive the console without speaking OSC.
// The relay package builds on this client; this package only handles the
// broker plumbing.
//
//	Console ↔ mixcore ↔ MQTT Broker ↔ Show control / dashboards
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all inbound commands
//	err = client.Subscribe(mqtt.Topics{}.AllCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a console value
//	topic := mqtt.Topics{}.ConsoleState("/enPPCFaderMessage/VirtualMicInputs/enFader/2")
//	client.Publish(topic, []byte(`{"arguments":[0.75]}`), 1, true)
package mqtt
