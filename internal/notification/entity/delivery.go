package entity

import "time"

// SMS is one authorization text to deliver.
type SMS struct {
	MessageID      string
	UserID         string
	OrganizationID string
	Text           string
}

// SendResult is what a gateway reports for an accepted SMS.
type SendResult struct {
	Provider   string
	ProviderID string
}

type CreateDeliveryLog struct {
	ID             int64
	MessageID      string
	UserID         string
	OrganizationID string
	OperationID    string
	OperationName  string
	Channel        Channel
	Status         DeliveryStatus
}

type UpdateDeliveryLog struct {
	ID               int64
	Status           DeliveryStatus
	ProviderResponse map[string]any
	NextRetryAt      *time.Time
}

type DeliveryLog struct {
	ID               int64
	MessageID        string
	UserID           string
	OrganizationID   string
	OperationID      string
	OperationName    string
	Channel          Channel
	Status           DeliveryStatus
	Attempts         int
	ProviderResponse map[string]any
	NextRetryAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
