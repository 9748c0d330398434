package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("s3cret!")
	require.NoError(t, err)

	v := NewBcryptVerifier()
	assert.True(t, v.Verify("s3cret!", hash))
	assert.False(t, v.Verify("wrong", hash))
	assert.False(t, v.Verify("s3cret!", "not-a-hash"))
}
