// Package device defines the collaborators the session layer consumes from a
// Bluetooth Low Energy stack, the error taxonomy shared by every layer, and
// the decoding of Gardena advertisement payloads.
//
// The stack itself lives elsewhere (see the go-ble subpackage); this package
// only describes what a stack must offer:
//   - connecting to an address and tearing the link down again
//   - looking up characteristics and their capabilities on a live link
//   - raw reads and acknowledged or unacknowledged writes
package device
