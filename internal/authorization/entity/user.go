package entity

// User is a record of the sample user backend.
type User struct {
	ID             string
	Username       string
	PasswordHash   string
	GivenName      string
	FamilyName     string
	OrganizationID string
}

type UserDetail struct {
	ID             string
	GivenName      string
	FamilyName     string
	OrganizationID string
}

func (u User) Detail() UserDetail {
	return UserDetail{
		ID:             u.ID,
		GivenName:      u.GivenName,
		FamilyName:     u.FamilyName,
		OrganizationID: u.OrganizationID,
	}
}
