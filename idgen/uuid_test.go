package idgen

import (
	"testing"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUID4(t *testing.T) {
	id1, err := GenerateUUID4()
	require.NoError(t, err)
	id2, err := GenerateUUID4()
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
	assert.True(t, IsValidUUID(id1))
	assert.True(t, IsValidUUID(id2))
	assert.False(t, IsValidUUID(faker.Word()))
}
