package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubjectEqual(t *testing.T) {
	assert.True(t, SubjectEqual("c1", "c1"))
	assert.False(t, SubjectEqual("c1", "c2"))
	assert.True(t, SubjectEqual(nil, nil))
}

func TestSubjectEqualUncomparableNeverEqual(t *testing.T) {
	a := []string{"x"}
	assert.False(t, SubjectEqual(a, a))
}

func TestGrantContextWellFormed(t *testing.T) {
	assert.False(t, GrantContext{}.WellFormed())

	gc := NewGrantContext("c1", "alice", time.Now().Add(time.Hour), []string{"read"})
	assert.True(t, gc.WellFormed())
}

func TestAuthorizationHasClientAndResourceOwner(t *testing.T) {
	a := Authorization{}
	assert.False(t, a.HasClient())
	assert.False(t, a.HasResourceOwner())

	a.Client = "c1"
	assert.True(t, a.HasClient())

	a.ResourceOwner = "alice"
	assert.True(t, a.HasResourceOwner())
}
