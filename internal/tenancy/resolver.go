// Package tenancy turns an inbound host and path into the tenant context a
// request runs under, and carries that context through the request.
package tenancy

import (
	"net"
	"strings"
)

// Kind is the surface a request was resolved to.
type Kind int

const (
	// Admin requests carry no tenant scoping: the marketing site and dashboards.
	Admin Kind = iota
	// Store requests are bound to a tenant's public storefront.
	Store
	// Preview requests are bound to a tenant named in the path, for its owner.
	Preview
)

func (k Kind) String() string {
	switch k {
	case Store:
		return "store"
	case Preview:
		return "preview"
	default:
		return "admin"
	}
}

// Resolution is the outcome of resolving one request.
type Resolution struct {
	Kind      Kind
	Subdomain string
}

// HasTenant reports whether the resolution selects a tenant.
func (r Resolution) HasTenant() bool {
	return r.Kind != Admin && r.Subdomain != ""
}

// branchSeparator splits preview deployment hosts: "<subdomain>---<branch>.<host>".
const branchSeparator = "---"

// Resolver maps host and path to a Resolution. It performs no I/O and holds
// no mutable state, so one value is shared by every request.
type Resolver struct {
	rootDomain    string
	previewPrefix string
}

// NewResolver builds a resolver for rootDomain (e.g. "shops.example.com") with
// path based previews under previewPrefix (e.g. "/preview").
func NewResolver(rootDomain, previewPrefix string) *Resolver {
	return &Resolver{
		rootDomain:    normalizeHost(rootDomain),
		previewPrefix: "/" + strings.Trim(previewPrefix, "/"),
	}
}

// PreviewPrefix returns the normalized preview path prefix.
func (r *Resolver) PreviewPrefix() string {
	return r.previewPrefix
}

// Resolve determines the tenant context for host and path.
// A preview path always wins over the host so local development works without wildcard DNS.
// Anything unrecognised resolves to Admin; a tenant is never assumed.
func (r *Resolver) Resolve(host, path string) Resolution {
	if sub, ok := r.previewSubdomain(path); ok {
		return Resolution{Kind: Preview, Subdomain: sub}
	}

	h := normalizeHost(host)
	if h == "" || h == r.rootDomain || h == "www."+r.rootDomain || isLoopback(h) {
		return Resolution{Kind: Admin}
	}

	if suffix := "." + r.rootDomain; strings.HasSuffix(h, suffix) {
		label := firstLabel(strings.TrimSuffix(h, suffix))
		if label != "" && label != "www" {
			return Resolution{Kind: Store, Subdomain: label}
		}
		return Resolution{Kind: Admin}
	}

	labels := strings.Split(h, ".")
	if len(labels) == 2 {
		// bare apex of some other domain, e.g. example.com
		return Resolution{Kind: Admin}
	}

	if i := strings.Index(labels[0], branchSeparator); i > 0 {
		return Resolution{Kind: Store, Subdomain: labels[0][:i]}
	}

	return Resolution{Kind: Admin}
}

func (r *Resolver) previewSubdomain(path string) (string, bool) {
	prefix := r.previewPrefix + "/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	segment := strings.TrimPrefix(path, prefix)
	if i := strings.IndexByte(segment, '/'); i >= 0 {
		segment = segment[:i]
	}
	if segment == "" {
		return "", false
	}
	return strings.ToLower(segment), true
}

func normalizeHost(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(raw); err == nil {
		raw = h
	}
	raw = strings.TrimPrefix(strings.TrimSuffix(raw, "]"), "[")
	return strings.TrimSuffix(raw, ".")
}

func firstLabel(h string) string {
	if i := strings.IndexByte(h, '.'); i >= 0 {
		return h[:i]
	}
	return h
}

func isLoopback(h string) bool {
	if h == "localhost" {
		return true
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}
