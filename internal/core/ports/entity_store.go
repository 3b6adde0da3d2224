package ports

import "context"

// EntityStore resolves master-data references held by the external REST data store.
// Each method returns nil when the reference exists and errs.ReferenceNotFoundError
// when it does not or when the store could not answer in time.
type EntityStore interface {
	ResolveRoute(ctx context.Context, name string) error
	ResolveCarrier(ctx context.Context, name string) error
	ResolveVehicle(ctx context.Context, plate string) error
}
