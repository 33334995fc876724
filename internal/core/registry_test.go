package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-ircd/internal/proto"
)

func TestRegistryClaimConflictIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()

	key, err := r.Claim("Nova", "a")
	require.NoError(t, err)
	assert.Equal(t, proto.CanonicalKey("nova"), key)

	_, err = r.Claim("nova", "b")
	assert.ErrorIs(t, err, ErrNicknameInUse)
	_, err = r.Claim("NOVA", "b")
	assert.ErrorIs(t, err, ErrNicknameInUse)

	// Re-claiming your own key is a display-case change, not a conflict.
	_, err = r.Claim("NoVa", "a")
	assert.NoError(t, err)
}

func TestRegistryConcurrentClaimsHaveOneWinner(t *testing.T) {
	r := NewRegistry()

	const racers = 32
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.Claim("Nova", fmt.Sprintf("session-%d", i))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrNicknameInUse)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestRegistryRename(t *testing.T) {
	r := NewRegistry()

	old, err := r.Claim("alice", "a")
	require.NoError(t, err)
	_, err = r.Claim("bob", "b")
	require.NoError(t, err)

	_, err = r.Rename(old, "bob", "a")
	assert.ErrorIs(t, err, ErrNicknameInUse)

	_, err = r.Rename(old, "ALICE", "a")
	assert.ErrorIs(t, err, ErrSameName, "rename to own folded key")

	newKey, err := r.Rename(old, "carol", "a")
	require.NoError(t, err)
	assert.Equal(t, proto.CanonicalKey("carol"), newKey)

	// The old key is free again.
	_, err = r.Claim("alice", "c")
	assert.NoError(t, err)
}

func TestRegistryLookupSeesOnlyBoundEntries(t *testing.T) {
	r := NewRegistry()

	key, err := r.Claim("alice", "a")
	require.NoError(t, err)
	assert.Nil(t, r.Lookup("alice"), "claimed but unbound")
	assert.Equal(t, 0, r.Count())

	id := &Identity{nick: "alice", key: key}
	r.Bind(key, id)
	assert.Same(t, id, r.Lookup("ALICE"))
	assert.Equal(t, 1, r.Count())
}

func TestRegistryReleaseChecksOwner(t *testing.T) {
	r := NewRegistry()

	key, err := r.Claim("alice", "a")
	require.NoError(t, err)

	r.Release(key, "b")
	_, err = r.Claim("alice", "c")
	assert.ErrorIs(t, err, ErrNicknameInUse, "release by non-owner must not free the key")

	r.Release(key, "a")
	_, err = r.Claim("alice", "c")
	assert.NoError(t, err)
}
