package handler

import "github.com/aioutlet/admin-service/internal/core/domain"

// --- Request / Response types ---

type passwordChangeRequest struct {
	NewPassword string `json:"newPassword" validate:"required,password"`
}

// updateUserRequest documents the PATCH body. Any subset of the fields may be
// sent; other keys are rejected.
type updateUserRequest struct {
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
	Password    string   `json:"password,omitempty"`
	PhoneNumber string   `json:"phoneNumber,omitempty"`
}

type dashboardStatsResponse struct {
	Success       bool                   `json:"success"`
	Data          *domain.DashboardStats `json:"data"`
	CorrelationID string                 `json:"correlationId"`
}

type recentOrdersResponse struct {
	Success       bool                 `json:"success"`
	Data          []domain.RecentOrder `json:"data"`
	CorrelationID string               `json:"correlationId"`
}

type recentUsersResponse struct {
	Success       bool                `json:"success"`
	Data          []domain.RecentUser `json:"data"`
	CorrelationID string              `json:"correlationId"`
}

type welcomeResponse struct {
	Message     string `json:"message"`
	Service     string `json:"service"`
	Description string `json:"description"`
	User        string `json:"user,omitempty"`
}

type versionResponse struct {
	Version     string `json:"version"`
	Service     string `json:"service"`
	Environment string `json:"environment"`
}
