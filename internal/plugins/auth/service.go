package auth

import (
	"context"
	"fmt"
	"net/url"
)

// PermissionProvider resolves a viewer's capabilities. clubID is empty for
// the unified view.
type PermissionProvider interface {
	Resolve(ctx context.Context, credential, clubID string) (Permissions, error)
}

// upstreamGetter is the slice of the platform client this package needs.
type upstreamGetter interface {
	Get(ctx context.Context, path string, query url.Values, credential string, dest any) error
}

// permissionService asks the platform's permissions endpoint.
type permissionService struct {
	client upstreamGetter
}

// NewPermissionService creates a PermissionProvider backed by the platform API.
func NewPermissionService(client upstreamGetter) PermissionProvider {
	return &permissionService{client: client}
}

// Resolve fetches the capability record for the viewer in the given scope.
func (s *permissionService) Resolve(ctx context.Context, credential, clubID string) (Permissions, error) {
	query := url.Values{}
	if clubID != "" {
		query.Set("clubId", clubID)
	}

	var perms Permissions
	if err := s.client.Get(ctx, "permissions", query, credential, &perms); err != nil {
		return Permissions{}, fmt.Errorf("resolving permissions: %w", err)
	}
	return perms, nil
}
