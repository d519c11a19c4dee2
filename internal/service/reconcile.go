package service

import (
	"context"
	"errors"
	"strings"

	"github.com/qmotor/car-marketplace/internal/model"
	"github.com/qmotor/car-marketplace/internal/repository"
)

// ProfileStore is the slice of the profile repository reconciliation
// needs.
type ProfileStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Profile, error)
	Insert(ctx context.Context, p *model.Profile) error
	UpdateContact(ctx context.Context, id uint64, email, fullName string, phone *string) error
}

// ProfileReconciler keeps the application profile in sync with the
// auth record. It runs on every session establishment (register,
// login, refresh): a missing profile is created with role normal_user;
// an existing one gets its mutable contact fields refreshed while role
// is left strictly alone. Callers log failures and continue — a broken
// profile sync must never block a sign-in.
type ProfileReconciler struct {
	Profiles ProfileStore
}

// Ensure creates or refreshes the profile for the given auth record.
func (r *ProfileReconciler) Ensure(ctx context.Context, u model.User) error {
	existing, err := r.Profiles.GetByID(ctx, u.ID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return r.Profiles.Insert(ctx, &model.Profile{
			ID:          u.ID,
			Email:       u.Email,
			FullName:    fallbackName(u),
			PhoneNumber: u.PhoneNumber,
			Role:        model.RoleNormalUser,
		})
	}
	if err != nil {
		return err
	}

	// Auth values win when present; otherwise the profile keeps what it
	// already had.
	fullName := strings.TrimSpace(u.FullName)
	if fullName == "" {
		fullName = existing.FullName
	}
	phone := u.PhoneNumber
	if phone == nil {
		phone = existing.PhoneNumber
	}
	return r.Profiles.UpdateContact(ctx, u.ID, u.Email, fullName, phone)
}

// fallbackName derives a display name when sign-up did not provide
// one: the local part of the email address.
func fallbackName(u model.User) string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}
