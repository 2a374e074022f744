package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIcon(t *testing.T) {
	got := string(Icon("icon-electric", "h-8 w-8"))

	assert.True(t, strings.HasPrefix(got, "<svg "))
	assert.Contains(t, got, `class="h-8 w-8"`)
	assert.Contains(t, got, `viewBox="0 0 24 24"`)
	assert.Equal(t, 1, strings.Count(got, "<path "))
}

func TestIcon_EveryServiceIconExists(t *testing.T) {
	for _, s := range testContent(t).Services {
		assert.Contains(t, iconPaths, s.Icon, "service %s", s.ID)
	}
}

func TestIcon_Unknown(t *testing.T) {
	got := string(Icon("icon-nope", "h-5 w-5"))
	assert.Contains(t, got, "<svg ")
	assert.NotContains(t, got, "<path")
}
