// Package shipment provides the Shipment aggregate and its status lifecycle.
//
// The package includes:
//   - Shipment: the aggregate root holding a shipment's attributes, current status,
//     event sequence counter and optional assignment
//   - Status: the linear state machine Pending -> InTransit -> Delivered
//   - Assignment: the route/carrier/vehicle triple bound to a pending shipment
//   - StatusEvent: an immutable record of one status change
//
// Key business rules:
//   - weight must be positive; dimensions, product type and address are required
//   - status only moves to its immediate successor; Delivered is terminal
//   - every status change produces exactly one StatusEvent, numbered 1, 2, ... per shipment
//   - a shipment can only be assigned while Pending, and assigning moves it to InTransit
package shipment
