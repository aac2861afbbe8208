package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunabot/werewolf-server-go/internal/model"
	"github.com/lunabot/werewolf-server-go/internal/rules"
)

func makeParticipant(role rules.RoleName, alive bool) model.Participant {
	return model.Participant{Role: &role, Alive: alive}
}

func TestEvaluateWin(t *testing.T) {
	t.Run("game continues while wolves are outnumbered", func(t *testing.T) {
		participants := []model.Participant{
			makeParticipant(rules.RoleWolf, true),
			makeParticipant(rules.RoleVillager, true),
			makeParticipant(rules.RoleVillager, true),
			makeParticipant(rules.RoleVillager, false),
		}
		ended, winner := evaluateWin(participants)
		assert.False(t, ended)
		assert.Nil(t, winner)
	})

	t.Run("villagers win when the wolves are gone", func(t *testing.T) {
		participants := []model.Participant{
			makeParticipant(rules.RoleWolf, false),
			makeParticipant(rules.RoleVillager, true),
			makeParticipant(rules.RoleVillager, true),
		}
		ended, winner := evaluateWin(participants)
		assert.True(t, ended)
		require.NotNil(t, winner)
		assert.Equal(t, rules.FactionVillagers, *winner)
	})

	t.Run("wolves win on parity", func(t *testing.T) {
		participants := []model.Participant{
			makeParticipant(rules.RoleWolf, true),
			makeParticipant(rules.RoleVillager, true),
			makeParticipant(rules.RoleVillager, false),
		}
		ended, winner := evaluateWin(participants)
		assert.True(t, ended)
		require.NotNil(t, winner)
		assert.Equal(t, rules.FactionWolves, *winner)
	})

	t.Run("wolves win when they outnumber the living", func(t *testing.T) {
		participants := []model.Participant{
			makeParticipant(rules.RoleWolf, true),
			makeParticipant(rules.RoleWolf, true),
			makeParticipant(rules.RoleVillager, true),
		}
		ended, winner := evaluateWin(participants)
		assert.True(t, ended)
		require.NotNil(t, winner)
		assert.Equal(t, rules.FactionWolves, *winner)
	})

	t.Run("nobody alive is a draw", func(t *testing.T) {
		participants := []model.Participant{
			makeParticipant(rules.RoleWolf, false),
			makeParticipant(rules.RoleVillager, false),
		}
		ended, winner := evaluateWin(participants)
		assert.True(t, ended)
		assert.Nil(t, winner)
	})
}
