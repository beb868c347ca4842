package models

import (
	"time"

	"github.com/google/uuid"
)

type AppealStatus string

const (
	AppealPending  AppealStatus = "PENDING"
	AppealApproved AppealStatus = "APPROVED"
	AppealRejected AppealStatus = "REJECTED"
)

// Appeal is an owner's request to reinstate a FLAGGED project.
type Appeal struct {
	ID         uuid.UUID    `json:"id"`
	ProjectID  uuid.UUID    `json:"projectId"`
	UserID     uuid.UUID    `json:"userId"`
	Reason     string       `json:"reason"`
	Status     AppealStatus `json:"status"`
	AdminNote  *string      `json:"adminNote,omitempty"`
	ResolvedBy *uuid.UUID   `json:"resolvedBy,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	ResolvedAt *time.Time   `json:"resolvedAt,omitempty"`
}

type AppealRequest struct {
	Reason string `json:"reason" binding:"required,min=10,max=2000"`
}

type AppealResolution struct {
	Decision  string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	AdminNote string `json:"adminNote" binding:"max=2000"`
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type UploadResult struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Size int64  `json:"size"`
}
