// Package queue defines message payloads exchanged over the message broker
// and the fire-and-forget notifier that feeds it.
package queue

// VerificationReviewedEvent is published when an admin approves or rejects
// a verification request. It carries enough information for downstream
// consumers to notify the owner without querying the primary database.
type VerificationReviewedEvent struct {
	RequestID       uint64 `json:"request_id"`
	RestaurantID    uint64 `json:"restaurant_id"`
	RestaurantName  string `json:"restaurant_name"`
	OwnerID         uint64 `json:"owner_id"`
	AdminID         uint64 `json:"admin_id"`
	Status          string `json:"status"` // APPROVED or REJECTED
	RejectionReason string `json:"rejection_reason,omitempty"`
	ReviewedAt      string `json:"reviewed_at"`
}
