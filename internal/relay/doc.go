// Package relay mirrors console traffic onto the MQTT bus and executes
// bus commands against the console session.
//
// # Topics
//
//   - mixcore/state/{address} — every inbound console message, retained
//   - mixcore/command/read, mixcore/command/write — inbound commands
//   - mixcore/ack/{request_id} — per-command acknowledgements
//   - mixcore/response/{request_id} — reply values of successful reads
//   - mixcore/console/status — console session state, retained
//
// # Confirmation gate
//
// Write commands naming a deny-listed endpoint (console.IsDangerous) are
// rejected with the confirmation_required code unless the payload carries
// confirm:true. The rejected command never reaches the console.
package relay
