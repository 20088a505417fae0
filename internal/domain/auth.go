package domain

// SubjectKind discriminates the trust level a credential was issued for.
type SubjectKind string

const (
	SubjectKindUser      SubjectKind = "user"
	SubjectKindGym       SubjectKind = "gym"
	SubjectKindGymAccess SubjectKind = "gym_access"
)

// Valid reports whether k is one of the known subject kinds.
func (k SubjectKind) Valid() bool {
	switch k {
	case SubjectKindUser, SubjectKindGym, SubjectKindGymAccess:
		return true
	}
	return false
}
