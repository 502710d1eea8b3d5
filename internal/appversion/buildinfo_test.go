package appversion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coach/internal/appversion"
)

func TestVersionIsSet(t *testing.T) {
	t.Parallel()

	assert.NotEmpty(t, appversion.String())
}
