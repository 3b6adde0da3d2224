// Package errs provides standardized error types for the shipment tracking service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: malformed or missing input
//   - ObjectNotFoundError: an unknown shipment (or other object) was requested
//   - ReferenceNotFoundError: a named route, carrier or vehicle does not resolve
//   - InvalidStateError: the operation is not valid in the aggregate's current status
//   - IllegalTransitionError: a status change skips or reverses the lifecycle
//   - VersionIsInvalidError: two writers raced for the same version/sequence
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel, so errors.Is classifies the error
//
// Transport adapters map the sentinels onto their own status codes; the core never
// panics for any of these conditions.
package errs
