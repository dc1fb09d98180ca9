package domain

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// AccountNumberLength is the total number of digits, check digit included.
const AccountNumberLength = 12

var (
	nine = big.NewInt(9)
	ten  = big.NewInt(10)
)

// GenerateAccountNumber draws 11 random digits from r (first digit 1-9) and
// appends their Luhn check digit. A nil reader means crypto/rand.
func GenerateAccountNumber(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}

	body := make([]byte, AccountNumberLength-1)
	for i := range body {
		var (
			n   *big.Int
			err error
		)
		if i == 0 {
			n, err = rand.Int(r, nine)
			if err == nil {
				n.Add(n, big.NewInt(1))
			}
		} else {
			n, err = rand.Int(r, ten)
		}
		if err != nil {
			return "", fmt.Errorf("drawing account number digit: %w", err)
		}
		body[i] = byte('0' + n.Int64())
	}

	check, err := LuhnCheckDigit(string(body))
	if err != nil {
		return "", err
	}

	return string(body) + string(rune('0'+check)), nil
}

// LuhnCheckDigit computes the digit that, appended to digits, makes the
// whole sequence pass the Luhn check.
func LuhnCheckDigit(digits string) (int, error) {
	if digits == "" {
		return 0, fmt.Errorf("%w: no digits", ErrInvalidArgument)
	}

	parity := len(digits) % 2
	sum := 0
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalidArgument, digits)
		}
		d := int(c - '0')
		if i%2 == parity {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}

	return (10 - sum%10) % 10, nil
}

// ValidAccountNumber reports whether s has the issued shape: 12 digits, no
// leading zero, and a valid trailing check digit.
func ValidAccountNumber(s string) bool {
	if len(s) != AccountNumberLength || s[0] == '0' {
		return false
	}

	check, err := LuhnCheckDigit(s[:AccountNumberLength-1])
	if err != nil {
		return false
	}

	return int(s[AccountNumberLength-1]-'0') == check
}
