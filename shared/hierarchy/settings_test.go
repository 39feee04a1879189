package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveInitialSettingsDoesNotAlias(t *testing.T) {
	parent := map[string]interface{}{"theme": "dark"}
	overrides := map[string]interface{}{"locale": "fr"}

	out := ResolveInitialSettings(parent, overrides, true)
	out["theme"] = "light"
	out["extra"] = 1

	assert.Equal(t, map[string]interface{}{"theme": "dark"}, parent)
	assert.Equal(t, map[string]interface{}{"locale": "fr"}, overrides)
}

func TestResolveInitialSettingsNilInputs(t *testing.T) {
	out := ResolveInitialSettings(nil, nil, true)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	out = ResolveInitialSettings(map[string]interface{}{"a": 1}, nil, false)
	assert.Empty(t, out)
}
