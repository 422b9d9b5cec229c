// Package nats carries LED state requests between external status-decision
// services and the portled LED manager.
//
// # Components
//
//   - Server: optional embedded NATS server (portled --nats-embedded)
//   - Bridge: subscribes to set requests and republishes manager events
//   - Client: request/watch helper used by the CLI
//
// # Subject Hierarchy
//
//	portled.leds.{id}.set     # state request (service → portled)
//	portled.leds.{id}.state   # applied state change (portled → subscribers)
//	portled.leds.{id}.error   # rejected or failed request (portled → subscribers)
//
// Core NATS only, no JetStream. A set message sent with a reply subject is
// answered with {"accepted":true} once queued, or {"accepted":false,"error":...}.
//
// # Message Formats
//
// SetMessage (portled.leds.{id}.set):
//
//	{"color": "yellow", "blink": "slow", "reason": "lldp_mismatch"}
//
// StateMessage (portled.leds.{id}.state):
//
//	{
//	  "led_id": 3,
//	  "color": "yellow",
//	  "blink": "slow",
//	  "previous_color": "blue",
//	  "previous_blink": "off",
//	  "blink_degraded": false,
//	  "timestamp": "2025-01-27T10:30:00Z"
//	}
//
// # Debugging with nats CLI
//
//	nats sub "portled.leds.>"
//	nats req portled.leds.3.set '{"color":"blue","blink":"fast"}'
package nats
