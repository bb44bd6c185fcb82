package tenancy

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	r := NewResolver("shops.example.com", "/preview")

	tests := []struct {
		name string
		host string
		path string
		want Resolution
	}{
		{name: "root domain", host: "shops.example.com", path: "/", want: Resolution{Kind: Admin}},
		{name: "www root", host: "www.shops.example.com", path: "/pricing", want: Resolution{Kind: Admin}},
		{name: "root with port", host: "shops.example.com:8080", path: "/", want: Resolution{Kind: Admin}},
		{name: "apex of other domain", host: "example.org", path: "/", want: Resolution{Kind: Admin}},
		{name: "localhost", host: "localhost:3000", path: "/", want: Resolution{Kind: Admin}},
		{name: "ipv4 loopback", host: "127.0.0.1:8080", path: "/", want: Resolution{Kind: Admin}},
		{name: "ipv6 loopback", host: "[::1]:8080", path: "/", want: Resolution{Kind: Admin}},
		{name: "empty host", host: "", path: "/", want: Resolution{Kind: Admin}},
		{name: "store subdomain", host: "cafe.shops.example.com", path: "/api/store/products", want: Resolution{Kind: Store, Subdomain: "cafe"}},
		{name: "store subdomain upper case and trailing dot", host: "CAFE.Shops.Example.com.", path: "/", want: Resolution{Kind: Store, Subdomain: "cafe"}},
		{name: "store subdomain with port", host: "cafe.shops.example.com:443", path: "/", want: Resolution{Kind: Store, Subdomain: "cafe"}},
		{name: "nested label uses leading label", host: "cafe.eu.shops.example.com", path: "/", want: Resolution{Kind: Store, Subdomain: "cafe"}},
		{name: "branch deployment", host: "cafe---feature-x.vercel.app", path: "/", want: Resolution{Kind: Store, Subdomain: "cafe"}},
		{name: "separator without subdomain", host: "---feature.vercel.app", path: "/", want: Resolution{Kind: Admin}},
		{name: "unrelated host", host: "foo.bar.other.net", path: "/", want: Resolution{Kind: Admin}},
		{name: "preview path", host: "shops.example.com", path: "/preview/studio/api/store/products", want: Resolution{Kind: Preview, Subdomain: "studio"}},
		{name: "preview path wins over host", host: "cafe.shops.example.com", path: "/preview/studio", want: Resolution{Kind: Preview, Subdomain: "studio"}},
		{name: "preview on localhost", host: "localhost:3000", path: "/preview/Studio/", want: Resolution{Kind: Preview, Subdomain: "studio"}},
		{name: "preview prefix without segment", host: "shops.example.com", path: "/preview/", want: Resolution{Kind: Admin}},
		{name: "prefix lookalike", host: "shops.example.com", path: "/previews/studio", want: Resolution{Kind: Admin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.host, tt.path))
		})
	}
}

func TestResolveLocalhostRoot(t *testing.T) {
	r := NewResolver("localhost", "preview")

	assert.Equal(t, Resolution{Kind: Store, Subdomain: "cafe"}, r.Resolve("cafe.localhost:3000", "/"))
	assert.Equal(t, Resolution{Kind: Admin}, r.Resolve("localhost:3000", "/"))
	assert.Equal(t, "/preview", r.PreviewPrefix())
}

func TestResolutionContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Resolution{Kind: Admin}, ResolutionFrom(ctx))

	ctx = WithResolution(ctx, Resolution{Kind: Store, Subdomain: "cafe"})
	assert.Equal(t, "cafe", ResolutionFrom(ctx).Subdomain)
}

func TestAccessFor(t *testing.T) {
	owner := uuid.New()

	_, ok := AccessFor(Resolution{Kind: Admin}, Viewer{UserID: owner})
	assert.False(t, ok)

	access, ok := AccessFor(Resolution{Kind: Preview, Subdomain: "studio"}, Viewer{UserID: owner})
	assert.True(t, ok)
	assert.Equal(t, Access{Subdomain: "studio", Preview: true, ViewerID: owner}, access)
	assert.False(t, access.Anonymous())

	ctx := WithResolution(context.Background(), Resolution{Kind: Store, Subdomain: "cafe"})
	access, ok = AccessFrom(ctx)
	assert.True(t, ok)
	assert.True(t, access.Anonymous())
	assert.False(t, access.Preview)
}
