package typeid_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertexforge/vertexforge/internal/typeid"
)

func TestNewAndValidate(t *testing.T) {
	id := typeid.NewShapeID()
	require.True(t, strings.HasPrefix(id, typeid.PrefixShape+"_"), id)
	require.NoError(t, typeid.Validate(id, typeid.PrefixShape))

	err := typeid.Validate(id, typeid.PrefixScene)
	assert.ErrorContains(t, err, "expected prefix")

	assert.Error(t, typeid.Validate("not an id", typeid.PrefixShape))
	assert.NotEqual(t, typeid.NewOpID(), typeid.NewOpID())
}
