package models

import "gorm.io/gorm"

// User represents a shopper account.
type User struct {
	ID            string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username      string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email         string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password      string `json:"password,omitempty" gorm:"type:varchar(255)" validate:"required,min=6"`
	Name          string `json:"name" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	Picture       string `json:"picture" validate:"omitempty,url"`
	EmailVerified bool   `json:"email_verified"`
	gorm.Model    `json:"-"`
}

// Profile is the identity view exposed to the storefront.
type Profile struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Picture       string `json:"picture"`
	Sub           string `json:"sub"`
	EmailVerified bool   `json:"email_verified"`
}

// Profile builds the public profile of the user.
func (u *User) Profile() Profile {
	name := u.Name
	if name == "" {
		name = u.Username
	}
	return Profile{
		Name:          name,
		Email:         u.Email,
		Picture:       u.Picture,
		Sub:           u.ID,
		EmailVerified: u.EmailVerified,
	}
}
