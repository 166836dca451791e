package league

import (
	"strings"

	"github.com/AdamBeresnev/leagueos/internal/utils"
)

type Role string

const (
	RoleGlobalAdmin Role = "GLOBAL_ADMIN"
	RoleClubAdmin   Role = "CLUB_ADMIN"
	RoleUser        Role = "USER"
	RoleRecorder    Role = "RECORDER"
	RoleUnknown     Role = "UNKNOWN"
)

// ToEffectiveRole resolves the role to authorize with. A club role, when
// present, takes precedence over the account role.
func ToEffectiveRole(role, clubRole string) Role {
	value := role
	if clubRole != "" {
		value = clubRole
	}
	switch r := Role(strings.ToUpper(value)); r {
	case RoleGlobalAdmin, RoleClubAdmin, RoleUser, RoleRecorder:
		return r
	default:
		return RoleUnknown
	}
}

// EffectiveRole of a signed-in profile.
func (p Profile) EffectiveRole() Role {
	return ToEffectiveRole(p.Role, utils.OrZero(p.ClubRole))
}

func CanAccessAdmin(r Role) bool {
	return r == RoleGlobalAdmin || r == RoleClubAdmin
}

func CanManageClubs(r Role) bool {
	return r == RoleGlobalAdmin
}

func CanRecordGames(r Role) bool {
	return CanAccessAdmin(r) || r == RoleRecorder
}

// ClubCapability decides whether a profile may act on one club.
type ClubCapability func(p Profile, clubID int64) bool

// CanAdminClub lets global admins into every club and club admins into their
// own club only.
func CanAdminClub(p Profile, clubID int64) bool {
	role := p.EffectiveRole()
	if CanManageClubs(role) {
		return true
	}
	return CanAccessAdmin(role) && p.MemberOf(clubID)
}

// CanRecordForClub is CanAdminClub widened to recorders of the club.
func CanRecordForClub(p Profile, clubID int64) bool {
	role := p.EffectiveRole()
	if CanManageClubs(role) {
		return true
	}
	return CanRecordGames(role) && p.MemberOf(clubID)
}

func (p Profile) MemberOf(clubID int64) bool {
	return p.ClubID != nil && *p.ClubID == clubID
}
