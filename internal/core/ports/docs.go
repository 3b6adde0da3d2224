// Package ports declares the interfaces the application core uses to reach the
// outside world: persistence, the external entity store, connected observers and
// the cross-instance relay.
package ports
