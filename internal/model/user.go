package model

import "time"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEngineer Role = "ENGINEER"
	RoleWorker   Role = "WORKER"
	RoleManager  Role = "MANAGER"
)

type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

func (u User) FullName() string {
	return u.Name + " " + u.Surname
}

type LoginCredentials struct {
	Email    string `json:"email" binding:"required" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required"`
}

type RegisterCredentials struct {
	Email    string `json:"email" binding:"required" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required,min=6"`
	Name     string `json:"name" binding:"required" validate:"required"`
	Surname  string `json:"surname" binding:"required" validate:"required"`
	Role     Role   `json:"role" binding:"required" validate:"required,oneof=ADMIN ENGINEER WORKER"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UserInput struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name,omitempty"`
	Surname  string `json:"surname,omitempty"`
	Role     Role   `json:"role,omitempty" validate:"omitempty,oneof=ADMIN ENGINEER WORKER MANAGER"`
	IsActive *bool  `json:"is_active,omitempty"`
}

type WorkerAssignment struct {
	ID         int64      `json:"id"`
	WorkerID   int64      `json:"worker"`
	MachineID  int64      `json:"machine"`
	AssignedBy *int64     `json:"assigned_by"`
	AssignedAt time.Time  `json:"assigned_at"`
	EndedAt    *time.Time `json:"ended_at"`
	IsActive   bool       `json:"is_active"`
}
