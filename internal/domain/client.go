package domain

import "time"

// ClientInfo is the read-only view of a bank client owned by the user service.
type ClientInfo struct {
	ClientID             string `json:"clientId"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	IdentificationType   string `json:"identificationType"`
	IdentificationNumber string `json:"identificationNumber"`
	Active               bool   `json:"active"`
}

// FullName joins first and last name.
func (c ClientInfo) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// AccountStatement groups a client's accounts and their movements for a period.
type AccountStatement struct {
	Client      ClientInfo
	PeriodStart time.Time
	PeriodEnd   time.Time
	Accounts    []*Account
}

// Role represents a caller's access level
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleOperator || r == RoleViewer
}

// CanWrite checks if the role may create accounts and register movements
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleOperator
}

// Principal is the authenticated caller extracted from a token.
type Principal struct {
	Subject string
	Role    Role
}
