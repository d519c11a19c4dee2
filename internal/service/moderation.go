// Package service holds the workflows that span repositories: the
// unified moderation state transition and profile reconciliation.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/qmotor/car-marketplace/internal/model"
	"github.com/qmotor/car-marketplace/internal/queue"
	"github.com/qmotor/car-marketplace/internal/repository"
)

// ErrInvalidTransition is returned when a requested status change is
// not a legal move from the listing's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// adminTransitions is the single source of truth for moderation moves.
// Every status change an admin performs — whether from the moderation
// tab or the analytics tab — goes through this table.
var adminTransitions = map[string][]string{
	model.StatusPending:  {model.StatusApproved, model.StatusRejected},
	model.StatusApproved: {model.StatusSold, model.StatusRejected},
	model.StatusRejected: {model.StatusApproved},
}

// TransitionAllowed reports whether an admin may move a listing from
// one status to another.
func TransitionAllowed(from, to string) bool {
	for _, t := range adminTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ListingStore is the slice of the car repository moderation needs.
type ListingStore interface {
	GetDetail(ctx context.Context, id uint64) (*repository.CarDetail, error)
	UpdateStatusFrom(ctx context.Context, id uint64, from, to string) error
}

// AuditLog appends admin audit rows.
type AuditLog interface {
	Insert(ctx context.Context, l *model.AdminLog) error
}

// NotificationSink stores best-effort user notifications.
type NotificationSink interface {
	Insert(ctx context.Context, n *model.Notification) error
}

// EventPublisher pushes moderation events to the broker.
type EventPublisher interface {
	PublishListingModerated(ctx context.Context, ev queue.ListingModeratedEvent) error
}

// Moderation performs admin status changes on listings: one transition
// check, one status update, exactly one audit row, then the best-effort
// side effects (owner notification, broker event). Side-effect failures
// are logged and swallowed; they never roll back the decision.
type Moderation struct {
	Cars          ListingStore
	Audit         AuditLog
	Notifications NotificationSink
	Events        EventPublisher
}

// ChangeStatus applies one admin decision and returns the listing with
// its new status. ErrInvalidTransition is returned for illegal moves;
// repository.ErrConflict when a concurrent decision won the race.
func (m *Moderation) ChangeStatus(ctx context.Context, adminID, carID uint64, newStatus string) (*repository.CarDetail, error) {
	if !model.ValidStatus(newStatus) {
		return nil, ErrInvalidTransition
	}
	d, err := m.Cars.GetDetail(ctx, carID)
	if err != nil {
		return nil, err
	}
	oldStatus := d.Status
	if !TransitionAllowed(oldStatus, newStatus) {
		return nil, ErrInvalidTransition
	}
	if err := m.Cars.UpdateStatusFrom(ctx, carID, oldStatus, newStatus); err != nil {
		return nil, err
	}

	changes, err := json.Marshal(map[string]any{
		"status": map[string]string{"old": oldStatus, "new": newStatus},
	})
	if err != nil {
		return nil, err
	}
	changesStr := string(changes)
	if err := m.Audit.Insert(ctx, &model.AdminLog{
		AdminID:    adminID,
		ActionType: model.ActionUpdate,
		TableName:  "cars",
		RecordID:   carID,
		Changes:    &changesStr,
	}); err != nil {
		return nil, err
	}

	m.notifyOwner(ctx, d, newStatus)
	m.publishEvent(ctx, adminID, d, oldStatus, newStatus)

	d.Status = newStatus
	return d, nil
}

func (m *Moderation) notifyOwner(ctx context.Context, d *repository.CarDetail, newStatus string) {
	if m.Notifications == nil {
		return
	}
	n := &model.Notification{
		UserID: d.UserID,
		Type:   model.NotificationTypeCarStatus,
		Title:  fmt.Sprintf("Car Listing %s", newStatus),
		Message: fmt.Sprintf("Your car listing (%s %s) has been %s.",
			d.BrandName, d.ModelName, strings.ToLower(newStatus)),
	}
	if err := m.Notifications.Insert(ctx, n); err != nil {
		log.Printf("moderation: notification insert failed for user %d: %v", d.UserID, err)
	}
}

func (m *Moderation) publishEvent(ctx context.Context, adminID uint64, d *repository.CarDetail, oldStatus, newStatus string) {
	if m.Events == nil {
		return
	}
	ev := queue.ListingModeratedEvent{
		CarID:     d.ID,
		OwnerID:   d.UserID,
		AdminID:   adminID,
		BrandName: d.BrandName,
		ModelName: d.ModelName,
		Year:      d.Year,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		DecidedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := m.Events.PublishListingModerated(ctx, ev); err != nil {
		log.Printf("moderation: event publish failed for car %d: %v", d.ID, err)
	}
}
