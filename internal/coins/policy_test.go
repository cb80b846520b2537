package coins_test

import (
	"testing"

	"github.com/limbo/focusbear/internal/coins"
	"github.com/limbo/focusbear/pkg/entity"
	"github.com/stretchr/testify/assert"
)

func TestSessionCoins(t *testing.T) {
	t.Run("quick hour", func(t *testing.T) {
		assert.Equal(t, 120, coins.SessionCoins(60, entity.SessionQuick))
	})
	t.Run("deep multiplier", func(t *testing.T) {
		// 45 * 2 * 1.5
		assert.Equal(t, 135, coins.SessionCoins(45, entity.SessionDeep))
	})
	t.Run("deep short session", func(t *testing.T) {
		assert.Equal(t, 75, coins.SessionCoins(25, entity.SessionDeep))
	})
	t.Run("power multiplier", func(t *testing.T) {
		assert.Equal(t, 100, coins.SessionCoins(25, entity.SessionPower))
	})
	t.Run("unknown class falls back to base rate", func(t *testing.T) {
		assert.Equal(t, 50, coins.SessionCoins(25, entity.SessionClass("nap")))
	})
}

func TestTaskCoins(t *testing.T) {
	assert.Equal(t, 60, coins.TaskCoins(30))
	assert.Equal(t, 0, coins.TaskCoins(0))
}
