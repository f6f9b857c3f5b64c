package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFaultError(t *testing.T) {
	f := InvalidInput("no constraints specified")
	assert.Equal(t, "no constraints specified", f.Error())
	assert.Equal(t, InvalidInputCode, f.Code())

	cause := errors.New("connection refused")
	up := Upstream("cannot create collection", cause)
	assert.Equal(t, "cannot create collection: connection refused", up.Error())
	assert.ErrorIs(t, up, cause)
}

func TestHasCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("building query: %w", InvalidInput("empty"))

	assert.True(t, IsInvalidInput(err))
	assert.False(t, IsNotFound(err))
	assert.False(t, IsInvalidInput(errors.New("plain")))
}

func TestWithMetadataCopies(t *testing.T) {
	base := New(NotFoundCode, "missing")
	withMD := base.WithMetadata(map[string]string{"collection": "cyclists"})

	assert.Nil(t, base.Metadata())
	assert.Equal(t, map[string]string{"collection": "cyclists"}, withMD.Metadata())
}
