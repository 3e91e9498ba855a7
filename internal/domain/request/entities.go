package request

import (
	"time"

	"ict-ticketing/internal/domain/apperr"
	"ict-ticketing/internal/domain/user"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusIssued   Status = "issued"
	StatusRejected Status = "rejected"
)

var (
	ErrNotFound       = apperr.New(apperr.KindNotFound, "request not found")
	ErrAlreadyDecided = apperr.New(apperr.KindInvalidTransition, "request has already been decided")
	ErrNotApproved    = apperr.New(apperr.KindInvalidTransition, "request must be approved before it can be issued")
	// ErrCodeCollision is retryable: a fresh submit draws a new code.
	ErrCodeCollision = apperr.New(apperr.KindConflict, "request code collision, please resubmit")
)

// Table: requests
type Request struct {
	ID           uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RequestCode  string     `gorm:"column:request_code;size:50;not null;uniqueIndex:ux_requests_request_code" json:"request_code"`
	Device       string     `gorm:"column:device;size:80;not null" json:"device"`
	Quantity     int        `gorm:"column:quantity;not null;default:1" json:"quantity"`
	Purpose      *string    `gorm:"column:purpose;type:text" json:"purpose"`
	Duration     *string    `gorm:"column:duration;size:60" json:"duration"`
	NeededBy     *time.Time `gorm:"column:needed_by" json:"needed_by"`
	Status       Status     `gorm:"column:status;size:20;not null;default:'pending';index:idx_requests_status" json:"status"`
	RejectReason *string    `gorm:"column:reject_reason;type:text" json:"reject_reason"`
	RequesterID  uint64     `gorm:"column:requester_id;not null;index:idx_requests_requester" json:"requester_id"`
	Requester    *user.User `gorm:"foreignKey:RequesterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Request) TableName() string { return "requests" }

// Transitions. strict=false keeps the permissive behaviour where a decided
// request may be decided again; strict=true only lets pending requests move.

func (r *Request) Approve(strict bool) error {
	if strict && r.Status != StatusPending {
		return ErrAlreadyDecided
	}
	r.Status = StatusApproved
	return nil
}

func (r *Request) Reject(reason string, strict bool) error {
	if strict && r.Status != StatusPending {
		return ErrAlreadyDecided
	}
	r.Status = StatusRejected
	r.RejectReason = &reason
	return nil
}

// Issue hands out approved equipment. Only approved -> issued is allowed.
func (r *Request) Issue() error {
	if r.Status != StatusApproved {
		return ErrNotApproved
	}
	r.Status = StatusIssued
	return nil
}
