package domain

import (
	"strings"
	"time"
	"unicode"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	BirthDate    Date      `gorm:"not null" json:"birthDate"`
	ZipCode      string    `gorm:"size:20" json:"zipCode"`
	Email        string    `gorm:"size:191;index;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// UserRequest is the body of POST /users and PUT /users/:id.
type UserRequest struct {
	Name      string `json:"name"      binding:"required,max=120"`
	BirthDate *Date  `json:"birthDate" binding:"required"`
	ZipCode   string `json:"zipCode"   binding:"max=20"`
	Email     string `json:"email"     binding:"required,email,max=191"`
	Password  string `json:"password"  binding:"required,password"`
}

// UserPatchRequest is the body of PATCH /users/:id. Nil fields are left untouched.
type UserPatchRequest struct {
	Name      *string `json:"name"      binding:"omitempty,min=1,max=120"`
	BirthDate *Date   `json:"birthDate"`
	ZipCode   *string `json:"zipCode"   binding:"omitempty,max=20"`
	Email     *string `json:"email"     binding:"omitempty,email,max=191"`
	Password  *string `json:"password"  binding:"omitempty,password"`
}

func (r UserRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return Validation("name is required")
	}
	if r.BirthDate == nil || r.BirthDate.IsZero() {
		return Validation("birthDate is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return Validation("email is required")
	}
	if !ValidPassword(r.Password) {
		return Validation("password must have at least %d characters with letters and digits", MinPasswordLen)
	}
	return nil
}

func (r UserPatchRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return Validation("name must not be blank")
	}
	if r.Email != nil && strings.TrimSpace(*r.Email) == "" {
		return Validation("email must not be blank")
	}
	if r.Password != nil && !ValidPassword(*r.Password) {
		return Validation("password must have at least %d characters with letters and digits", MinPasswordLen)
	}
	return nil
}

const MinPasswordLen = 6

// ValidPassword requires MinPasswordLen characters including a letter and a digit.
func ValidPassword(pw string) bool {
	if len([]rune(pw)) < MinPasswordLen {
		return false
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLetter(r):
			letter = true
		}
	}
	return letter && digit
}
