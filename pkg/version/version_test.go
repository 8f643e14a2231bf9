package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion_PrefersLinkedValue(t *testing.T) {
	prev := version
	t.Cleanup(func() { version = prev })

	version = "v1.2.3"
	assert.Equal(t, "v1.2.3", Version())
}

func TestVersion_FallsBack(t *testing.T) {
	prev := version
	t.Cleanup(func() { version = prev })

	version = ""
	assert.NotEmpty(t, Version())
}
