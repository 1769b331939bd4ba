package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionID(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()

	assert.NotEqual(t, a, b)
	assert.NoError(t, a.Validate())
	assert.Len(t, a.ShortString(), 8)
	assert.Equal(t, string(a), a.String())
}

func TestSessionID_Short(t *testing.T) {
	assert.Equal(t, "abc", SessionID("abc").ShortString())
	assert.ErrorIs(t, SessionID("").Validate(), ErrEmptySessionID)
}
