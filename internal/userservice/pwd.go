package userservice

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// set replaces the stored hash with one derived from plaintext.
func (p *Password) set(plaintext string) (err error) {
	p.hash, err = bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	return err
}

// compare reports whether plaintext matches the stored hash. A mismatch is
// not an error.
func (p *Password) compare(plaintext string) (bool, error) {
	switch err := bcrypt.CompareHashAndPassword(p.hash, []byte(plaintext)); {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
