package model

import (
	"time"

	"github.com/google/uuid"
)

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User roles
const (
	UserRoleAdmin  = "admin"
	UserRoleDoctor = "doctor"
	UserRoleStaff  = "staff"
)

// User is a clinic staff member together with their profile settings.
type User struct {
	Base
	Email                 string     `json:"email" db:"email"`
	PasswordHash          string     `json:"-" db:"password_hash"`
	FirstName             string     `json:"first_name" db:"first_name"`
	LastName              string     `json:"last_name" db:"last_name"`
	Role                  string     `json:"role" db:"role"`
	Status                string     `json:"status" db:"status"`
	GoogleCalendarToken   string     `json:"-" db:"google_calendar_token"`
	GoogleCalendarEnabled bool       `json:"google_calendar_enabled" db:"google_calendar_enabled"`
	LastLoginAt           *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// CalendarSync reports whether bookings should be pushed to the user's calendar.
func (u *User) CalendarSync() bool {
	return u.GoogleCalendarEnabled && u.GoogleCalendarToken != ""
}

// Profile is the user as shown on the settings page.
type Profile struct {
	ID                      uuid.UUID `json:"id"`
	Email                   string    `json:"email"`
	FirstName               string    `json:"first_name"`
	LastName                string    `json:"last_name"`
	Role                    string    `json:"role"`
	GoogleCalendarConnected bool      `json:"google_calendar_connected"`
	GoogleCalendarEnabled   bool      `json:"google_calendar_enabled"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		ID:                      u.ID,
		Email:                   u.Email,
		FirstName:               u.FirstName,
		LastName:                u.LastName,
		Role:                    u.Role,
		GoogleCalendarConnected: u.GoogleCalendarToken != "",
		GoogleCalendarEnabled:   u.GoogleCalendarEnabled,
	}
}

// CreateUserRequest represents user creation parameters
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Role      string `json:"role" binding:"required,oneof=admin doctor staff"`
}

// UpdateUserRequest represents user update parameters
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1"`
	Status    *string `json:"status" binding:"omitempty,oneof=active inactive"`
	Role      *string `json:"role" binding:"omitempty,oneof=admin doctor staff"`
}

type ConnectCalendarRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

type CalendarSyncRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type UserFilters struct {
	Role       string `form:"role" binding:"omitempty,oneof=admin doctor staff"`
	Status     string `form:"status" binding:"omitempty,oneof=active inactive"`
	SearchTerm string `form:"search"`
}
