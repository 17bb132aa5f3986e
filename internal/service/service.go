// Package service defines the backend-agnostic interface to the remote task list.
package service

import "context"

// Gateway is the remote task list endpoint.
// The remote side does not durably persist writes; callers treat every
// response as confirmation only, never as a source of truth.
// Commands and the store never import a backend SDK directly.
type Gateway interface {
	// List returns every remote record in remote order.
	List(ctx context.Context) ([]RemoteTask, error)

	// Create creates a remote record with the given title.
	// The returned record carries the remote-assigned id. Callers keep their
	// own id and hand the remote one to a Linker, if the gateway is one.
	Create(ctx context.Context, title string) (RemoteTask, error)

	// Patch updates the given fields of a remote record.
	Patch(ctx context.Context, remoteID string, fields PatchFields) (RemoteTask, error)

	// Delete deletes a remote record.
	Delete(ctx context.Context, remoteID string) error
}

// Linker is implemented by gateways whose records keep the id the remote
// assigned on create. Link pairs a locally generated id with that remote id
// so later Patch and Delete calls made with the local id reach the record.
type Linker interface {
	Link(ctx context.Context, localID, remoteID string) error
}
