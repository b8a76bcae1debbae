package handlers

import (
	"regexp"

	"moviehub-backend/internal/models"
)

var imdbIDPattern = regexp.MustCompile(`^tt\d{7,8}$`)

type FetchMovieRequest struct {
	IMDBID string `json:"imdb_id" example:"tt1375666"`
}

type FetchByTitleRequest struct {
	Title string `json:"title" example:"Inception"`
}

type RegisterRequest struct {
	Name     string `json:"name" example:"Jane Doe"`
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"hunter22"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"hunter22"`
}

type AuthResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

func newAuthResponse(user *models.User, token string) AuthResponse {
	return AuthResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	}
}
