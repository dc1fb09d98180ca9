package domain

import (
	"fmt"
	"strings"
)

// AccountType is the closed catalog of account kinds.
type AccountType string

const (
	AccountTypeSavings  AccountType = "SAVINGS"
	AccountTypeChecking AccountType = "CHECKING"
)

var accountTypeCodes = map[AccountType]string{
	AccountTypeSavings:  "Ahorro",
	AccountTypeChecking: "Corriente",
}

// accountTypesByCode indexes variants by lowercase catalog code.
var accountTypesByCode = func() map[string]AccountType {
	idx := make(map[string]AccountType, len(accountTypeCodes))
	for t, code := range accountTypeCodes {
		idx[strings.ToLower(code)] = t
	}
	return idx
}()

// legacyAccountTypeNames are the variant names older clients send.
var legacyAccountTypeNames = map[string]AccountType{
	"AHORROS":   AccountTypeSavings,
	"CORRIENTE": AccountTypeChecking,
}

// AccountTypes lists every variant in catalog order.
func AccountTypes() []AccountType {
	return []AccountType{AccountTypeSavings, AccountTypeChecking}
}

// Code returns the catalog string persisted for the type.
func (t AccountType) Code() string {
	return accountTypeCodes[t]
}

// Valid reports whether t is a known variant.
func (t AccountType) Valid() bool {
	_, ok := accountTypeCodes[t]
	return ok
}

// AccountTypeFromCode resolves a catalog code, ignoring case and surrounding spaces.
func AccountTypeFromCode(code string) (AccountType, error) {
	key := strings.ToLower(strings.TrimSpace(code))
	if t, ok := accountTypesByCode[key]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedAccountType, code)
}

// ParseAccountType accepts a variant name ("SAVINGS"), a legacy name
// ("AHORROS") or a catalog code ("Ahorro").
func ParseAccountType(s string) (AccountType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if t := AccountType(name); t.Valid() {
		return t, nil
	}
	if t, ok := legacyAccountTypeNames[name]; ok {
		return t, nil
	}
	return AccountTypeFromCode(s)
}
