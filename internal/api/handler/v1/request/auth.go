package request

import (
	"errors"
	"regexp"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	passwordRegexPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`
	// bcrypt refuses longer inputs.
	maxPasswordBytes = 72
)

var (
	usernameExp = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	passwordExp = regexp2.MustCompile(passwordRegexPattern, regexp2.None)

	errInvalidPassword         = errors.New("must be at least 8 characters and contain a letter and a digit")
	errConfirmPasswordMismatch = errors.New("doesn't match the password")
	errInvalidUsername         = errors.New("may contain only letters, digits and @/./+/-/_")
)

type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

func (req *SignupRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required, validation.RuneLength(1, 150), validation.Match(usernameExp).Error(errInvalidUsername.Error())),
		validation.Field(&req.Email, validation.Required, validation.RuneLength(1, 254), is.Email),
		validation.Field(&req.Password, validation.Required, validation.Length(0, maxPasswordBytes), validation.By(strongPassword)),
		validation.Field(&req.ConfirmPassword, validation.Required, validation.By(matches(req.Password))),
		validation.Field(&req.FirstName, validation.RuneLength(0, 150)),
		validation.Field(&req.LastName, validation.RuneLength(0, 150)),
	)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
}

func strongPassword(value interface{}) error {
	s, _ := value.(string)
	ok, err := passwordExp.MatchString(s)
	if err != nil || !ok {
		return errInvalidPassword
	}
	return nil
}

func matches(password string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != password {
			return errConfirmPasswordMismatch
		}
		return nil
	}
}
