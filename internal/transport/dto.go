package transport

import "github.com/akulov/points-api/internal/models"

// UserView is the public shape of a user row. The password hash is excluded
// by the type itself, not by field selection at call sites.
type UserView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Points   int    `json:"points"`
}

func UserViewFrom(u *models.User) UserView {
	return UserView{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Points:   u.Points,
	}
}

func UserViewsFrom(users []models.User) []UserView {
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, UserViewFrom(&users[i]))
	}
	return views
}

type AuthResult struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}
