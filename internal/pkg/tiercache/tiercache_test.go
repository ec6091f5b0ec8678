package tiercache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyIsPerUser(t *testing.T) {
	assert.Equal(t, "tier:member:42", key(42))
	assert.NotEqual(t, key(1), key(2))
}

func TestGetMissWhenNothingCached(t *testing.T) {
	// Whether the cache is reachable or not, an unknown user is a miss and
	// never reads as a member.
	member, ok := Get(987654321)
	assert.False(t, ok)
	assert.False(t, member)
}
