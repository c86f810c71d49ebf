// Copyright (c) 2026 Finboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"time"
)

// EventPublisher delivers session lifecycle events. The AMQP publisher
// implements it when a broker is configured.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements [EventPublisher].
func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// Event is the payload of every session lifecycle message.
type Event struct {
	Type           string    `json:"type"`
	UserID         string    `json:"user_id,omitempty"`
	TenantID       string    `json:"tenant_id,omitempty"`
	BusinessUnitID *string   `json:"business_unit_id,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
