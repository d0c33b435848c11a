package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLocators_AllNamed(t *testing.T) {
	locators := DefaultLocators()
	for name, loc := range locators.byName() {
		assert.Equal(t, name, loc.Name)
		assert.NotEmpty(t, loc.Query, name)
	}
	assert.Equal(t, "1st", locators.FirstDegree.Text)
}

func TestLocatorNames(t *testing.T) {
	names := LocatorNames()
	assert.Len(t, names, 9)
	assert.Contains(t, names, LocatorConnectOption)
	assert.IsIncreasing(t, names)
}

func TestWithOverrides(t *testing.T) {
	base := DefaultLocators()

	updated, err := base.WithOverrides(map[string]string{
		LocatorInvite:      `main button[aria-label^="Invite"]`,
		LocatorFirstDegree: "span.dist-value",
	})
	require.NoError(t, err)
	assert.Equal(t, `main button[aria-label^="Invite"]`, updated.Invite.Query)
	assert.Equal(t, "span.dist-value", updated.FirstDegree.Query)
	assert.Equal(t, "1st", updated.FirstDegree.Text)

	// base is unchanged
	assert.Equal(t, DefaultLocators(), base)
}

func TestWithOverrides_Errors(t *testing.T) {
	_, err := DefaultLocators().WithOverrides(map[string]string{"follow": "button"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown locator")

	_, err = DefaultLocators().WithOverrides(map[string]string{LocatorInvite: "  "})
	assert.Error(t, err)
}
