// Package rules holds the static role catalog and the tunable game policies.
// The catalog is fixed at compile time and shared read-only by every session.
package rules

type Faction string

const (
	FactionWolves    Faction = "wolves"
	FactionVillagers Faction = "villagers"
)

type RoleName string

const (
	RoleWolf     RoleName = "wolf"
	RoleVillager RoleName = "villager"
)

type Role struct {
	Name        RoleName `json:"name"`
	Faction     Faction  `json:"faction"`
	ActsAtNight bool     `json:"actsAtNight"`
}

var catalog = map[RoleName]Role{
	RoleWolf:     {Name: RoleWolf, Faction: FactionWolves, ActsAtNight: true},
	RoleVillager: {Name: RoleVillager, Faction: FactionVillagers, ActsAtNight: false},
}

// Lookup resolves a role name against the catalog.
func Lookup(name RoleName) (Role, bool) {
	role, ok := catalog[name]
	return role, ok
}

// Catalog returns every defined role.
func Catalog() []Role {
	roles := make([]Role, 0, len(catalog))
	for _, r := range catalog {
		roles = append(roles, r)
	}
	return roles
}
