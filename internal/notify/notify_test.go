package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vapajomi/internal/i18n"
)

type sent struct{ title, message string }

func capture(n *Notifier) *[]sent {
	var out []sent
	n.send = func(title, message string) error {
		out = append(out, sent{title, message})
		return nil
	}
	return &out
}

func TestShow(t *testing.T) {
	i18n.SetLanguage(i18n.ES)
	n := New(true)
	out := capture(n)

	n.Show("Cuenta creada exitosamente")
	n.Error("sin red")

	require.Len(t, *out, 2)
	assert.Equal(t, sent{"VAPAJOMI", "Cuenta creada exitosamente"}, (*out)[0])
	assert.Equal(t, sent{"VAPAJOMI: Error", "sin red"}, (*out)[1])
}

func TestDisabled(t *testing.T) {
	n := New(false)
	out := capture(n)

	n.Show("hola")
	assert.Empty(t, *out)

	n.SetEnabled(true)
	assert.True(t, n.Enabled())
	n.Show("hola")
	assert.Len(t, *out, 1)
}

func TestTruncate(t *testing.T) {
	n := New(true)
	out := capture(n)

	n.Show(strings.Repeat("ñ", 150))
	require.Len(t, *out, 1)
	assert.Equal(t, strings.Repeat("ñ", maxBody)+"...", (*out)[0].message)
}
