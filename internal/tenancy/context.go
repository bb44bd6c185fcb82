package tenancy

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	resolutionKey contextKey = iota
	viewerKey
)

// WithResolution attaches the request's resolution. It is set once, by the
// tenant middleware, and read everywhere else.
func WithResolution(ctx context.Context, r Resolution) context.Context {
	return context.WithValue(ctx, resolutionKey, r)
}

// ResolutionFrom returns the resolution attached to ctx. Requests that never
// went through the middleware resolve to Admin.
func ResolutionFrom(ctx context.Context) Resolution {
	r, ok := ctx.Value(resolutionKey).(Resolution)
	if !ok {
		return Resolution{Kind: Admin}
	}
	return r
}

// Viewer is the authenticated caller, if any.
type Viewer struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// Authenticated reports whether the viewer carries a user id.
func (v Viewer) Authenticated() bool {
	return v.UserID != uuid.Nil
}

// WithViewer attaches the authenticated caller.
func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, v)
}

// ViewerFrom returns the authenticated caller, or an anonymous viewer.
func ViewerFrom(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerKey).(Viewer)
	return v
}

// Access is everything the storefront needs to know about who is asking for
// which store. It is built per request and passed explicitly.
type Access struct {
	Subdomain string
	Preview   bool
	ViewerID  uuid.UUID
}

// Anonymous reports whether no user is authenticated.
func (a Access) Anonymous() bool {
	return a.ViewerID == uuid.Nil
}

// AccessFor combines a resolution and viewer. ok is false for Admin resolutions,
// which have no store to access.
func AccessFor(r Resolution, v Viewer) (Access, bool) {
	if !r.HasTenant() {
		return Access{}, false
	}
	return Access{
		Subdomain: r.Subdomain,
		Preview:   r.Kind == Preview,
		ViewerID:  v.UserID,
	}, true
}

// AccessFrom builds the Access for the request carried by ctx.
func AccessFrom(ctx context.Context) (Access, bool) {
	return AccessFor(ResolutionFrom(ctx), ViewerFrom(ctx))
}
