package model

import (
	"fmt"

	"telegram-dialog-state/internal/domain"
)

// MemberStatus is the Telegram chat membership status of a user.
type MemberStatus string

const (
	MemberStatusCreator       MemberStatus = "creator"
	MemberStatusAdministrator MemberStatus = "administrator"
	MemberStatusMember        MemberStatus = "member"
	MemberStatusRestricted    MemberStatus = "restricted"
	MemberStatusLeft          MemberStatus = "left"
	MemberStatusKicked        MemberStatus = "kicked"
)

// ParseMemberStatus decodes a stored status literal. Unrecognized
// values are an error, never coerced.
func ParseMemberStatus(raw string) (MemberStatus, error) {
	switch MemberStatus(raw) {
	case MemberStatusCreator, MemberStatusAdministrator, MemberStatusMember,
		MemberStatusRestricted, MemberStatusLeft, MemberStatusKicked:
		return MemberStatus(raw), nil
	}
	return "", fmt.Errorf("unrecognized member status %q: %w", raw, domain.ErrInvalidArgument)
}
