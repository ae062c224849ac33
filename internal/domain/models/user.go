package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// User представляет пользователя магазина.
// APIKey одновременно является первичным ключом и учётными данными пользователя.
type User struct {
	APIKey    string `json:"apiKey"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Admin     bool   `json:"admin"`
	Orders    Orders `json:"orders"`
}

// NewUser проверяет входные данные и собирает пользователя.
// apiKey и флаг admin здесь не задаются: их назначает только хранилище и повышение прав.
func NewUser(firstName, lastName, email string) (User, error) {
	u := User{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     strings.TrimSpace(email),
	}
	if err := validate.Struct(u); err != nil {
		return User{}, fmt.Errorf("invalid user: %w", err)
	}
	return u, nil
}

// DisplayName возвращает имя, которое попадает в снимок заказа.
func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
