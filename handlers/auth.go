package handlers

import (
	"net/http"

	"campus-events/models"
	"campus-events/services"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

// HandleSignupAdmin handles POST /auth/signup-admin
func (h *Handlers) HandleSignupAdmin(w http.ResponseWriter, r *http.Request) {
	var req services.AdminSignup
	if !decode(w, r, &req) {
		return
	}
	user, err := h.Auth.SignupAdmin(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusCreated, AuthResponse{Success: true, Message: "Admin account created", User: user})
}

// HandleSignupStudent handles POST /auth/signup-student
func (h *Handlers) HandleSignupStudent(w http.ResponseWriter, r *http.Request) {
	var req services.StudentSignup
	if !decode(w, r, &req) {
		return
	}
	user, err := h.Auth.SignupStudent(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusCreated, AuthResponse{Success: true, Message: "Student account created", User: user})
}

// HandleLogin handles POST /auth/login
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.Auth.Login(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusOK, AuthResponse{Success: true, User: user})
}

// HandleLogout handles POST /auth/logout. There is no session to end.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "Logged out"})
}
