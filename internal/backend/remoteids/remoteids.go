// Package remoteids lets a gateway that assigns its own ids be addressed by
// the ids generated locally on create.
//
// The pairing is kept in a cache slot so it survives across invocations.
// Ids with no pairing (records seeded from the remote list) pass through
// unchanged.
package remoteids

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"todo/internal/cache"
	"todo/internal/logging"
	"todo/internal/service"
)

// Gateway wraps another gateway and translates local ids to remote ids on
// Patch and Delete.
type Gateway struct {
	inner service.Gateway
	slot  cache.Slot
	log   *log.Logger

	mu     sync.Mutex
	ids    map[string]string
	loaded bool
}

var (
	_ service.Gateway = (*Gateway)(nil)
	_ service.Linker  = (*Gateway)(nil)
)

// Wrap returns a Gateway over inner that stores its id map in slot.
func Wrap(inner service.Gateway, slot cache.Slot, logger *log.Logger) *Gateway {
	return &Gateway{
		inner: inner,
		slot:  slot,
		log:   logging.OrDiscard(logger),
	}
}

// load reads the map on first use. g.mu must be held.
func (g *Gateway) load(ctx context.Context) error {
	if g.loaded {
		return nil
	}
	data, err := g.slot.Get(ctx)
	switch {
	case errors.Is(err, cache.ErrNotFound):
		g.ids = make(map[string]string)
	case err != nil:
		return fmt.Errorf("read remote ids: %w", err)
	default:
		ids := make(map[string]string)
		if err := json.Unmarshal(data, &ids); err != nil {
			return fmt.Errorf("decode remote ids: %w", err)
		}
		g.ids = ids
	}
	g.loaded = true
	return nil
}

// save writes the map back. g.mu must be held.
func (g *Gateway) save(ctx context.Context) error {
	data, err := json.Marshal(g.ids)
	if err != nil {
		return err
	}
	return g.slot.Put(ctx, data)
}

// Resolve returns the remote id paired with id, or id itself.
func (g *Gateway) Resolve(ctx context.Context, id string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.load(ctx); err != nil {
		return "", err
	}
	if remote, ok := g.ids[id]; ok {
		return remote, nil
	}
	return id, nil
}

// Link implements service.Linker.
func (g *Gateway) Link(ctx context.Context, localID, remoteID string) error {
	if remoteID == "" {
		return fmt.Errorf("no remote id for %s", localID)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.load(ctx); err != nil {
		return err
	}
	if localID == remoteID {
		return nil
	}
	g.ids[localID] = remoteID
	return g.save(ctx)
}

func (g *Gateway) forget(ctx context.Context, localID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.ids[localID]; !ok {
		return
	}
	delete(g.ids, localID)
	if err := g.save(ctx); err != nil {
		g.log.Warn("could not save remote ids", "err", err)
	}
}

// List implements service.Gateway.
func (g *Gateway) List(ctx context.Context) ([]service.RemoteTask, error) {
	return g.inner.List(ctx)
}

// Create implements service.Gateway.
func (g *Gateway) Create(ctx context.Context, title string) (service.RemoteTask, error) {
	return g.inner.Create(ctx, title)
}

// Patch implements service.Gateway.
func (g *Gateway) Patch(ctx context.Context, id string, fields service.PatchFields) (service.RemoteTask, error) {
	remote, err := g.Resolve(ctx, id)
	if err != nil {
		return service.RemoteTask{}, &service.GatewayError{Op: "patch", Err: err}
	}
	return g.inner.Patch(ctx, remote, fields)
}

// Delete implements service.Gateway. A successful delete drops the pairing.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	remote, err := g.Resolve(ctx, id)
	if err != nil {
		return &service.GatewayError{Op: "delete", Err: err}
	}
	if err := g.inner.Delete(ctx, remote); err != nil {
		return err
	}
	if remote != id {
		g.forget(ctx, id)
	}
	return nil
}

// Close releases the slot.
func (g *Gateway) Close() error {
	return g.slot.Close()
}
