package model

import "time"

type User struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	FirstName    string    `json:"first_name,omitempty" bson:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty" bson:"last_name,omitempty"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Verified     bool      `json:"verified" bson:"verified"`
	Role         Role      `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	}
	return u.Email
}

type Owner struct {
	ID              string   `json:"id,omitempty" bson:"_id,omitempty"`
	User            string   `json:"user" bson:"user"`
	IDProofNumber   string   `json:"id_proof_number" bson:"id_proof_number"`
	IDProofType     string   `json:"id_proof_type" bson:"id_proof_type"`
	IDProofImageURL string   `json:"id_proof_image_url" bson:"id_proof_image_url"`
	Properties      []string `json:"properties" bson:"properties"`
	Verified        bool     `json:"verified" bson:"verified"`
}

type OwnerProfile struct {
	IDProofNumber   string `json:"id_proof_number" validate:"required,min=4,max=50"`
	IDProofType     string `json:"id_proof_type" validate:"required,min=2,max=50"`
	IDProofImageURL string `json:"id_proof_image_url" validate:"required,url"`
}

type Registration struct {
	Email     string        `json:"email" validate:"required,email,max=254"`
	Password  string        `json:"password" validate:"required,min=8,max=128"`
	FirstName string        `json:"first_name" validate:"omitempty,max=100"`
	LastName  string        `json:"last_name" validate:"omitempty,max=100"`
	Phone     string        `json:"phone" validate:"omitempty,max=32"`
	Role      Role          `json:"role" validate:"required,oneof=user owner"`
	Owner     *OwnerProfile `json:"owner,omitempty" validate:"required_if=Role owner,omitempty"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

type OTP struct {
	ID        string    `json:"-" bson:"_id,omitempty"`
	Email     string    `json:"email" bson:"email"`
	CodeHash  string    `json:"-" bson:"code_hash"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type OTPVerification struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric,min=4,max=8"`
}

type PasswordReset struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,numeric,min=4,max=8"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

type Wishlist struct {
	ID         string   `json:"id,omitempty" bson:"_id,omitempty"`
	User       string   `json:"user" bson:"user"`
	Properties []string `json:"properties" bson:"properties"`
}

type WishlistAdd struct {
	PropertyID string `json:"property_id" validate:"required,mongodb"`
}

type WishlistView struct {
	Properties    []*Property `json:"properties"`
	TotalItems    int         `json:"total_items"`
	IsNewProperty *bool       `json:"is_new_property,omitempty"`
}

type UserList struct {
	Users      []*User    `json:"users"`
	TotalUsers int64      `json:"total_users"`
	Pagination Pagination `json:"pagination"`
}
