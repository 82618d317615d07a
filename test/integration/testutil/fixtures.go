//go:build integration

package testutil

import (
	"context"
	"net/http"
	"testing"

	accountsrepository "rentals/internal/accounts/repository"
	"rentals/pkg/auth"
	"rentals/pkg/model"
)

const DefaultPassword = "correct-horse-battery"

type PropertyUploadBuilder struct {
	upload model.PropertyUpload
}

func NewPropertyUploadBuilder() *PropertyUploadBuilder {
	return &PropertyUploadBuilder{
		upload: model.PropertyUpload{
			Title:        "Sunny two bedroom flat",
			Description:  "Close to the metro",
			Location:     model.Location{Address: "12 MG Road", City: "Pune", State: "Maharashtra", Country: "India"},
			Rent:         25000,
			Deposit:      50000,
			PropertyType: model.Apartment,
			Bedrooms:     2,
			Bathrooms:    1,
			Area:         900,
			Amenities:    []string{"parking", "lift"},
			Images:       []string{"https://example.com/flat.jpg"},
		},
	}
}

func (b *PropertyUploadBuilder) WithTitle(title string) *PropertyUploadBuilder {
	b.upload.Title = title
	return b
}

func (b *PropertyUploadBuilder) WithCity(city string) *PropertyUploadBuilder {
	b.upload.Location.City = city
	return b
}

func (b *PropertyUploadBuilder) WithRent(rent float64) *PropertyUploadBuilder {
	b.upload.Rent = rent
	return b
}

func (b *PropertyUploadBuilder) WithBedrooms(bedrooms int) *PropertyUploadBuilder {
	b.upload.Bedrooms = bedrooms
	return b
}

func (b *PropertyUploadBuilder) Build() model.PropertyUpload {
	return b.upload
}

// SeedUser stores a verified account with DefaultPassword. Owners also get
// an owner profile.
func SeedUser(t *testing.T, m *MongoHelper, email string, role model.Role) *model.User {
	t.Helper()
	ctx := context.Background()
	cfg := m.Config()

	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		Verified:     true,
		Role:         role,
	}
	if err := accountsrepository.NewMongoUserRepository(cfg).Create(ctx, user); err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}

	if role == model.RoleOwner {
		owner := &model.Owner{
			User:            user.ID,
			IDProofNumber:   "ABCDE1234F",
			IDProofType:     "pan",
			IDProofImageURL: "https://example.com/pan.jpg",
			Verified:        true,
		}
		if err := accountsrepository.NewMongoOwnerRepository(cfg).Create(ctx, owner); err != nil {
			t.Fatalf("failed to seed owner profile for %s: %v", email, err)
		}
	}
	return user
}

// Login returns a client authenticated as email.
func Login(t *testing.T, c *Client, email string) *Client {
	t.Helper()
	resp := c.POST(t, "/api/v1/auth/login", model.Credentials{Email: email, Password: DefaultPassword})
	AssertStatusCode(t, resp, http.StatusOK)

	var body struct {
		Data model.Session `json:"data"`
	}
	if err := resp.UnmarshalJSON(&body); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	if body.Data.Token == "" {
		t.Fatalf("login for %s returned no token", email)
	}
	return c.WithToken(body.Data.Token)
}

// DecodeData unmarshals the data envelope of a success response into target.
func DecodeData(t *testing.T, resp *Response, target any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: target}
	if err := resp.UnmarshalJSON(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v. Body: %s", err, string(resp.Body))
	}
}
