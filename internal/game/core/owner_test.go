package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwner(t *testing.T) {
	tests := []struct {
		name      string
		owner     Owner
		kind      OwnerKind
		hostileTo bool // for mover 1
		enemyOf   bool // for player 1
		str       string
	}{
		{"zero value", Owner{}, OwnerUnused, true, false, "Unused"},
		{"neutral", Neutral(), OwnerNeutral, false, false, "Neutral"},
		{"blocked", Blocked(), OwnerBlocked, true, false, "Blocked"},
		{"self", Player(1), OwnerPlayer, false, false, "Player(1)"},
		{"enemy", Player(4), OwnerPlayer, true, true, "Player(4)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.owner.Kind())
			assert.Equal(t, tt.hostileTo, tt.owner.IsHostileTo(1))
			assert.Equal(t, tt.enemyOf, tt.owner.IsEnemyOf(1))
			assert.Equal(t, tt.str, tt.owner.String())
		})
	}
}

func TestOwner_Equality(t *testing.T) {
	assert.Equal(t, Unused(), Owner{})
	assert.True(t, Player(2) == Player(2))
	assert.False(t, Player(2) == Player(3))
	assert.False(t, Neutral() == Blocked())

	id, ok := Player(5).PlayerID()
	assert.True(t, ok)
	assert.Equal(t, 5, id)

	_, ok = Neutral().PlayerID()
	assert.False(t, ok)
	assert.True(t, Player(5).Is(5))
	assert.False(t, Neutral().Is(0))
}
