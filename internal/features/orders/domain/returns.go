package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReturnStatus is the state of a line item's return lifecycle.
type ReturnStatus string

const (
	ReturnNone      ReturnStatus = "none"
	ReturnRequested ReturnStatus = "requested"
	ReturnApproved  ReturnStatus = "approved"
	ReturnRejected  ReturnStatus = "rejected"
	ReturnReturned  ReturnStatus = "returned"
	ReturnRefunded  ReturnStatus = "refunded"
)

// ReturnStatuses lists every return status in lifecycle order.
var ReturnStatuses = []ReturnStatus{
	ReturnNone,
	ReturnRequested,
	ReturnApproved,
	ReturnRejected,
	ReturnReturned,
	ReturnRefunded,
}

// ParseReturnStatus converts user input into a ReturnStatus.
func ParseReturnStatus(raw string) (ReturnStatus, error) {
	s := ReturnStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range ReturnStatuses {
		if s == known {
			return s, nil
		}
	}
	return "", Validationf("unknown return status %q", raw)
}

// Terminal reports whether the return lifecycle has ended.
func (s ReturnStatus) Terminal() bool {
	return s == ReturnRejected || s == ReturnRefunded
}

// RefundMethod selects where refunded money goes.
type RefundMethod string

const (
	// RefundOriginal refunds through the original payment path.
	RefundOriginal RefundMethod = "original"
	// RefundToWallet credits the buyer's wallet regardless of how they paid.
	RefundToWallet RefundMethod = "wallet"
)

// ParseRefundMethod converts user input into a RefundMethod; empty means RefundOriginal.
func ParseRefundMethod(raw string) (RefundMethod, error) {
	switch m := RefundMethod(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return RefundOriginal, nil
	case RefundOriginal, RefundToWallet:
		return m, nil
	default:
		return "", Validationf("unknown refund method %q", raw)
	}
}

// RefundPath is the execution path of a refund.
type RefundPath string

const (
	RefundPathGateway RefundPath = "gateway"
	RefundPathWallet  RefundPath = "wallet"
)

// RefundPath decides how a refund for this order is executed.
// Only gateway-paid orders refunded to the original method go through the gateway.
func (o *Order) RefundPath(method RefundMethod) RefundPath {
	if o.PaymentMethod == PaymentGateway && method == RefundOriginal {
		return RefundPathGateway
	}
	return RefundPathWallet
}

// ReturnRequest is the per-item return lifecycle with its audit fields.
type ReturnRequest struct {
	Status      ReturnStatus `json:"status"`
	Reason      string       `json:"reason,omitempty"`
	Description string       `json:"description,omitempty"`
	RequestedAt *time.Time   `json:"requested_at,omitempty"`

	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	ApprovedBy          string     `json:"approved_by,omitempty"`
	AdminNotes          string     `json:"admin_notes,omitempty"`
	ReturnShippingLabel string     `json:"return_shipping_label,omitempty"`

	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectedBy      string     `json:"rejected_by,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`

	ReturnedAt           *time.Time `json:"returned_at,omitempty"`
	ReturnTrackingNumber string     `json:"return_tracking_number,omitempty"`

	RefundedAt          *time.Time `json:"refunded_at,omitempty"`
	RefundAmount        int64      `json:"refund_amount,omitempty"`
	RefundTransactionID string     `json:"refund_transaction_id,omitempty"`
	// RefundPath is recorded before money moves; once set, every attempt must use it.
	RefundPath      RefundPath `json:"refund_path,omitempty"`
	RefundReference string     `json:"refund_reference,omitempty"`
}

// CurrentStatus treats an unset status as ReturnNone.
func (r *ReturnRequest) CurrentStatus() ReturnStatus {
	if r.Status == "" {
		return ReturnNone
	}
	return r.Status
}

// ErrorState builds an ErrInvalidState for action attempted in status.
func ErrorState(action, status string) error {
	return fmt.Errorf("%w: cannot %s in status %s", ErrInvalidState, action, status)
}

func (r *ReturnRequest) require(action string, from ReturnStatus) error {
	if current := r.CurrentStatus(); current != from {
		return ErrorState(action, string(current))
	}
	return nil
}

// Request opens the return lifecycle. Legal only from none; reason and description are kept as submitted.
func (r *ReturnRequest) Request(reason, description string, now time.Time) error {
	if err := r.require("request return", ReturnNone); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		return Validationf("return reason is required")
	}
	r.Status = ReturnRequested
	r.Reason = reason
	r.Description = description
	r.RequestedAt = stamp(now)
	return nil
}

// Approve accepts a requested return. Legal only from requested.
func (r *ReturnRequest) Approve(actorID, shippingLabel, notes string, now time.Time) error {
	if err := r.require("approve return", ReturnRequested); err != nil {
		return err
	}
	r.Status = ReturnApproved
	r.ApprovedAt = stamp(now)
	r.ApprovedBy = actorID
	r.ReturnShippingLabel = shippingLabel
	r.AdminNotes = notes
	return nil
}

// Reject declines a requested return. Legal only from requested.
func (r *ReturnRequest) Reject(actorID, reason string, now time.Time) error {
	if err := r.require("reject return", ReturnRequested); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		return Validationf("rejection reason is required")
	}
	r.Status = ReturnRejected
	r.RejectedAt = stamp(now)
	r.RejectedBy = actorID
	r.RejectionReason = reason
	return nil
}

// MarkReturned records physical receipt of the item. Legal only from approved.
func (r *ReturnRequest) MarkReturned(trackingNumber string, now time.Time) error {
	if err := r.require("mark returned", ReturnApproved); err != nil {
		return err
	}
	if strings.TrimSpace(trackingNumber) == "" {
		return Validationf("return tracking number is required")
	}
	r.Status = ReturnReturned
	r.ReturnedAt = stamp(now)
	r.ReturnTrackingNumber = trackingNumber
	return nil
}

// CheckRefundable verifies a refund may be executed. Legal only from returned.
func (r *ReturnRequest) CheckRefundable() error {
	return r.require("process refund", ReturnReturned)
}

// ClaimRefund pins the refund to path and reference before any money moves.
// It reports whether the claim is new. A claim on a different path is rejected
// so a refund interrupted on one path is never paid again on the other.
func (r *ReturnRequest) ClaimRefund(path RefundPath, reference string) (bool, error) {
	if err := r.CheckRefundable(); err != nil {
		return false, err
	}
	if r.RefundPath != "" {
		if r.RefundPath != path {
			return false, fmt.Errorf("%w: refund already started via %s", ErrInvalidState, r.RefundPath)
		}
		return false, nil
	}
	r.RefundPath = path
	r.RefundReference = reference
	return true, nil
}

// MarkRefunded records a completed refund. Legal only from returned, on the claimed path if any.
func (r *ReturnRequest) MarkRefunded(amount int64, transactionID string, path RefundPath, now time.Time) error {
	if err := r.CheckRefundable(); err != nil {
		return err
	}
	if r.RefundPath != "" && r.RefundPath != path {
		return fmt.Errorf("%w: refund already started via %s", ErrInvalidState, r.RefundPath)
	}
	r.Status = ReturnRefunded
	r.RefundedAt = stamp(now)
	r.RefundAmount = amount
	r.RefundTransactionID = transactionID
	r.RefundPath = path
	return nil
}

func stamp(t time.Time) *time.Time {
	return &t
}
