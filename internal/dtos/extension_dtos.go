package dtos

import "time"

type RequestExtensionRequest struct {
	RequestedClosingDate time.Time `json:"requested_closing_date" validate:"required"`
	Reason               string    `json:"reason" validate:"required"`
}

type DecideExtensionRequest struct {
	Approve     bool   `json:"approve"`
	NotifyName  string `json:"notify_name,omitempty"`
	NotifyEmail string `json:"notify_email,omitempty" validate:"omitempty,email"`
}
