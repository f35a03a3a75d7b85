package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"auth-api/internal/domain/models"
	"auth-api/internal/http-server/middleware/auth"
	req "auth-api/internal/lib/api/request"
	resp "auth-api/internal/lib/api/response"
	"auth-api/internal/lib/logger/sl"
	"auth-api/internal/service/user"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type Service interface {
	Register(ctx context.Context, in user.RegisterInput) (models.User, string, error)
	Login(ctx context.Context, credential, password string) (models.User, string, error)
	Profile(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, in user.UpdateInput) (models.User, error)
}

type User struct {
	log     *slog.Logger
	service Service
	secret  []byte
	now     func() time.Time
}

func New(log *slog.Logger, service Service, secret []byte, now func() time.Time) *User {
	if now == nil {
		now = time.Now
	}

	return &User{
		log:     log,
		service: service,
		secret:  secret,
		now:     now,
	}
}

func (u *User) Register() func(r chi.Router) {
	return func(r chi.Router) {
		// Public routes
		r.Post("/register", u.register)
		r.Post("/login", u.login)

		// Require auth
		r.Group(func(r chi.Router) {
			r.Use(auth.New(u.log, u.secret, u.now))

			r.Get("/profile", u.profile)
			r.Put("/profile", u.editProfile)
		})
	}
}

func (u *User) register(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.register"

	log := u.log.With(slog.String("op", op))

	var in req.Register
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		log.Error("failed to decode request", sl.Error(err))
		u.fail(w, r, http.StatusBadRequest, "Invalid request body.")
		return
	}

	usr, token, err := u.service.Register(r.Context(), user.RegisterInput{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
		Location: in.Location,
		Picture:  in.Picture,
		DOB:      in.DOB,
	})
	if err != nil {
		u.respondErr(w, r, err, "An error occurred while registering the user.")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp.Register{
		Message: fmt.Sprintf("User %s registered successfully.", usr.Username),
		Token:   token,
		User:    usr,
	})
}

func (u *User) login(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.login"

	log := u.log.With(slog.String("op", op))

	var in req.Login
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		log.Error("failed to decode request", sl.Error(err))
		u.fail(w, r, http.StatusBadRequest, "Invalid request body.")
		return
	}

	usr, token, err := u.service.Login(r.Context(), in.Credential, in.Password)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			kind := "username"
			if user.IsEmail(in.Credential) {
				kind = "email"
			}
			u.fail(w, r, http.StatusNotFound, "No user found with this "+kind)
			return
		}
		u.respondErr(w, r, err, "An error occurred during login. Please try again later.")
		return
	}

	render.JSON(w, r, resp.Login{
		Token:    token,
		Username: usr.Username,
		Email:    usr.Email,
		Name:     usr.Name,
		Picture:  usr.Picture,
		Location: usr.Location,
	})
}

func (u *User) profile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())

	usr, err := u.service.Profile(r.Context(), id)
	if err != nil {
		u.respondErr(w, r, err, "An error occurred while fetching the profile.")
		return
	}

	render.JSON(w, r, resp.Profile{User: usr})
}

func (u *User) editProfile(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.editProfile"

	log := u.log.With(slog.String("op", op))

	id, _ := auth.UserID(r.Context())

	var in req.UpdateProfile
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		log.Error("failed to decode request", sl.Error(err))
		u.fail(w, r, http.StatusBadRequest, "Invalid request body.")
		return
	}

	usr, err := u.service.UpdateProfile(r.Context(), id, user.UpdateInput{
		Name:            in.Name,
		Location:        in.Location,
		Picture:         in.Picture,
		DOB:             in.DOB,
		CurrentPassword: in.CurrentPassword,
		NewPassword:     in.NewPassword,
	})
	if err != nil {
		u.respondErr(w, r, err, "An error occurred while updating the profile.")
		return
	}

	render.JSON(w, r, resp.Profile{
		Message: "Profile updated successfully.",
		User:    usr,
	})
}

// respondErr writes the response for a service error. Errors the service does not
// classify become a 500 carrying internalMsg; their detail stays in the log.
func (u *User) respondErr(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		u.log.Error("request failed", slog.String("path", r.URL.Path), sl.Error(err))
		msg = internalMsg
	}

	u.fail(w, r, status, msg)
}

func (u *User) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, resp.Err(msg))
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, user.ErrMissingFields):
		return http.StatusBadRequest, "All fields (username, email, password) are required."
	case errors.Is(err, user.ErrMissingCredentials):
		return http.StatusBadRequest, "Both credential (email/username) and password are required"
	case errors.Is(err, user.ErrInvalidDOB):
		return http.StatusBadRequest, "Invalid date of birth."
	case errors.Is(err, user.ErrNothingToUpdate):
		return http.StatusBadRequest, "No fields to update."
	case errors.Is(err, user.ErrPasswordPairRequired):
		return http.StatusBadRequest, "Both current and new passwords are required to change the password."
	case errors.Is(err, user.ErrPasswordTooShort):
		return http.StatusBadRequest, fmt.Sprintf("New password must be at least %d characters long.", user.MinPasswordLength)
	case errors.Is(err, user.ErrPasswordTooLong):
		return http.StatusBadRequest, fmt.Sprintf("Password must be at most %d bytes long.", user.MaxPasswordBytes)
	case errors.Is(err, user.ErrIncorrectPassword):
		return http.StatusUnauthorized, "Incorrect password"
	case errors.Is(err, user.ErrWrongCurrentPassword):
		return http.StatusUnauthorized, "Current password is incorrect."
	case errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound, "User not found."
	case errors.Is(err, user.ErrEmailTaken):
		return http.StatusConflict, "Email already in use."
	case errors.Is(err, user.ErrUsernameTaken):
		return http.StatusConflict, "Username already in use."
	case errors.Is(err, user.ErrUserExists):
		return http.StatusConflict, "User already exists."
	default:
		return http.StatusInternalServerError, "Internal error."
	}
}
