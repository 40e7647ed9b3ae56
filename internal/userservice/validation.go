package userservice

import (
	"github.com/sushihentaime/bloglist/internal/common"
)

const (
	UsernameMinLength = 3
	PasswordMinLength = 3
	// bcrypt ignores input beyond this many bytes and x/crypto refuses it.
	PasswordMaxBytes = 72
)

func validateUsername(v *common.Validator, username string) {
	v.Check(username != "", "username", "must be provided")
	v.Check(v.CheckMinLength(username, UsernameMinLength), "username", "must be at least 3 characters long")
}

func validatePassword(v *common.Validator, password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(v.CheckMinLength(password, PasswordMinLength), "password", "must be at least 3 characters long")
	v.Check(len(password) <= PasswordMaxBytes, "password", "must not be more than 72 bytes long")
}

// usernameError is the validation error a store reports for a username the
// schema refuses.
func usernameError(username string) error {
	v := common.NewValidator()
	validateUsername(v, username)
	if v.Valid() {
		return nil
	}
	return v.ValidationError()
}
