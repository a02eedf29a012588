package games

import "sort"

// Role is one of the seven fixed roles.
type Role string

const (
	RoleWerewolf     Role = "werewolf"
	RoleVillager     Role = "villager"
	RoleSeer         Role = "seer"
	RoleWitch        Role = "witch"
	RoleHunter       Role = "hunter"
	RoleGuard        Role = "guard"
	RoleVillageIdiot Role = "village_idiot"
)

// Alignment is the team a role plays for.
type Alignment string

const (
	AlignmentWerewolf Alignment = "werewolf"
	AlignmentGood     Alignment = "good"
)

// RoleSet selects which fourth special joins seer, witch and hunter.
type RoleSet string

const (
	RoleSetA RoleSet = "A" // guard
	RoleSetB RoleSet = "B" // village idiot
)

// Valid reports whether r is a known role set.
func (r RoleSet) Valid() bool {
	return r == RoleSetA || r == RoleSetB
}

// AlignmentOf derives the alignment of a role.
func AlignmentOf(r Role) Alignment {
	if r == RoleWerewolf {
		return AlignmentWerewolf
	}
	return AlignmentGood
}

// IsSpecial reports whether r is a good role with a power (not a plain villager).
func (r Role) IsSpecial() bool {
	switch r {
	case RoleSeer, RoleWitch, RoleHunter, RoleGuard, RoleVillageIdiot:
		return true
	}
	return false
}

// RoleComposition returns the 12 roles for a role set: 4 werewolves, 4 villagers and 4 specials.
func RoleComposition(set RoleSet) []Role {
	roles := make([]Role, 0, PlayerCount)
	for i := 0; i < 4; i++ {
		roles = append(roles, RoleWerewolf)
	}
	for i := 0; i < 4; i++ {
		roles = append(roles, RoleVillager)
	}
	roles = append(roles, RoleSeer, RoleWitch, RoleHunter)
	if set == RoleSetB {
		roles = append(roles, RoleVillageIdiot)
	} else {
		roles = append(roles, RoleGuard)
	}
	return roles
}

// ValidateRoleComposition reports whether players carry exactly the roles of set.
func ValidateRoleComposition(players []Player, set RoleSet) bool {
	if len(players) != PlayerCount {
		return false
	}
	want := RoleComposition(set)
	got := make([]Role, 0, len(players))
	for _, p := range players {
		got = append(got, p.Role)
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

// NightActionOrder is the order night actions are collected and resolved in.
func NightActionOrder() []Role {
	return []Role{RoleGuard, RoleWerewolf, RoleWitch, RoleSeer}
}
