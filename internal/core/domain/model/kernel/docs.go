// Package kernel provides the identity primitives shared by the shipment tracking model.
//
// The package includes:
//   - ShipmentID: the positive integer identifier of a shipment, as assigned by the store
//   - UUID: a random identifier for process-local things such as observers and relay origins
//
// Both are immutable value objects; their zero values are invalid and rejected by Validate.
package kernel
