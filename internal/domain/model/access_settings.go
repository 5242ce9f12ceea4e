package model

// AccessSettings controls who may interact with a stack. A nil
// *AccessSettings means "no settings at all" and is distinct from a
// settings object with empty fields; persistence keeps that
// distinction for the nil case.
type AccessSettings struct {
	UserIDs      []int64
	MemberStatus *MemberStatus
	// Custom is caller-defined and stored verbatim; this package never
	// interprets it.
	Custom any
}
