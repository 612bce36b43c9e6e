package loader_test

import (
	"testing"

	"enrollment-manager/core/loader"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (f *stubFeature) Name() string    { return f.name }
func (f *stubFeature) IsEnabled() bool { return f.enabled }
func (f *stubFeature) Load(fiber.Router) error {
	f.loaded = true
	return f.err
}

func TestManager_LoadAll(t *testing.T) {
	t.Run("SkipsDisabled", func(t *testing.T) {
		on := &stubFeature{name: "on", enabled: true}
		off := &stubFeature{name: "off"}
		m := loader.NewManager()
		m.Register(on)
		m.Register(off)

		loaded, err := m.LoadAll(fiber.New())
		require.NoError(t, err)
		assert.Equal(t, []string{"on"}, loaded)
		assert.False(t, off.loaded)
	})

	t.Run("StopsOnError", func(t *testing.T) {
		m := loader.NewManager()
		m.Register(&stubFeature{name: "broken", enabled: true, err: assert.AnError})
		m.Register(&stubFeature{name: "later", enabled: true})

		loaded, err := m.LoadAll(fiber.New())
		assert.ErrorIs(t, err, assert.AnError)
		assert.ErrorContains(t, err, "broken")
		assert.Empty(t, loaded)
	})
}
