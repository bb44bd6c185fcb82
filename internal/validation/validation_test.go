package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/storefront/internal/apperror"
)

func TestIsSubdomain(t *testing.T) {
	valid := []string{"cafe", "my-shop", "abc", "a1b", strings.Repeat("a", 63)}
	invalid := []string{"", "ab", "-cafe", "cafe-", "Cafe", "my_shop", "caf.e", strings.Repeat("a", 64)}

	for _, s := range valid {
		assert.True(t, IsSubdomain(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsSubdomain(s), s)
	}
}

func TestIsSlug(t *testing.T) {
	assert.True(t, IsSlug("mug"))
	assert.True(t, IsSlug("broken-mug-2"))
	assert.False(t, IsSlug("Broken-Mug"))
	assert.False(t, IsSlug("double--dash"))
	assert.False(t, IsSlug("-lead"))
	assert.False(t, IsSlug(""))
	assert.False(t, IsSlug(strings.Repeat("a", MaxSlugLength+1)))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "blue-coffee-mug", Slugify("  Blue Coffee   Mug! "))
	assert.Equal(t, "mug-2", Slugify("Mug #2"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestStructReportsJSONFieldName(t *testing.T) {
	type input struct {
		Subdomain string `json:"subdomain" validate:"required,subdomain"`
		Color     string `json:"color" validate:"omitempty,hexcolor"`
	}

	err := Struct(input{Subdomain: "ok-shop", Color: "red"})
	require.Error(t, err)

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Equal(t, "color", appErr.Field)

	assert.NoError(t, Struct(input{Subdomain: "ok-shop", Color: "#aabbcc"}))
}
