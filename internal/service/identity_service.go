// Package service contains the application's business logic, sitting
// between the HTTP handlers and the repositories.
package service

import (
	"context"
	"fmt"

	"agora/internal/auth"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
)

// IdentityService resolves external identities to local user accounts.
type IdentityService struct {
	users repository.UserRepository
}

// NewIdentityService returns a new IdentityService.
func NewIdentityService(users repository.UserRepository) *IdentityService {
	return &IdentityService{users: users}
}

// ResolveGoogleIdentity maps a verified Google identity to a local user,
// creating the account on first sign-in. The returned bool reports whether
// the account was created by this call. The insert runs first and backs
// off on conflict, so two concurrent first sign-ins for the same email
// produce exactly one row and both resolve to it.
func (s *IdentityService) ResolveGoogleIdentity(ctx context.Context, identity *auth.GoogleIdentity) (*models.User, bool, error) {
	candidate := &models.User{
		Email:     identity.Email,
		FirstName: identity.GivenName,
		LastName:  identity.FamilyName,
		ImageURL:  identity.Picture,
	}

	created, err := s.users.CreateIfAbsent(ctx, candidate)
	if err != nil {
		observability.RecordAuthEvent("login", "error")
		return nil, false, err
	}
	if created {
		observability.RecordAuthEvent("login", "signup")
		return candidate, true, nil
	}

	// The insert was a no-op, so a row with this email must exist.
	existing, err := s.users.GetByEmail(ctx, identity.Email)
	if err != nil {
		observability.RecordAuthEvent("login", "error")
		return nil, false, err
	}
	if existing == nil {
		// Insert said conflict but the lookup finds nothing. Either the
		// account was deleted in between or the store is inconsistent.
		observability.RecordAuthEvent("login", "error")
		return nil, false, models.NewInternalError(
			fmt.Errorf("identity resolution inconsistency for email %q", identity.Email))
	}

	observability.RecordAuthEvent("login", "returning")
	return existing, false, nil
}
