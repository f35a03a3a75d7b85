package response

import "auth-api/internal/domain/models"

type Error struct {
	Error string `json:"error"`
}

func Err(msg string) Error {
	return Error{Error: msg}
}

type Register struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
}

type Login struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	Location string `json:"location"`
}

type Profile struct {
	Message string      `json:"message,omitempty"`
	User    models.User `json:"user"`
}
