package service

import (
	"math/rand/v2"

	"github.com/lunabot/werewolf-server-go/internal/rules"
)

// dealRoles returns one role per participant index: a uniformly random subset
// of WolfCount(n) players gets the wolf role, everyone else the villager role.
// rand.Perm is an unbiased Fisher-Yates shuffle over an unpredictable source.
func dealRoles(n int, rs rules.Ruleset) []rules.RoleName {
	roles := make([]rules.RoleName, n)
	wolves := rs.WolfCount(n)

	for pos, idx := range rand.Perm(n) {
		if pos < wolves {
			roles[idx] = rules.RoleWolf
		} else {
			roles[idx] = rules.RoleVillager
		}
	}
	return roles
}
