// Package guard holds small helpers that protect domain invariants.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by ConstructorGuard.Validate when the
// caller passes a nil error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks an aggregate or value object as built by its constructor.
// A zero-value guard fails validation, which lets Validate methods reject structs
// that were instantiated directly or restored without going through RestoreX.
//
// Example:
//
//	type Shipment struct {
//	    id    kernel.ShipmentID
//	    guard guard.ConstructorGuard
//	}
//
//	func (s *Shipment) Validate() error {
//	    return s.guard.Validate(ErrShipmentIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard that passes validation.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, and nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
