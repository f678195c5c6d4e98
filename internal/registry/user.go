package registry

import (
	"context"
	"fmt"
	"time"

	"enricher/internal/cache"
	"enricher/internal/platform/config"
	"enricher/pkg/platform/sentinel"
)

type userSearchRequest struct {
	RequestInfo RequestInfo `json:"RequestInfo"`
	TenantID    string      `json:"tenantId"`
	UUID        []string    `json:"uuid"`
}

type userResponse struct {
	User []User `json:"user"`
}

// UserDisplay is the flattened user surface the documents carry.
type UserDisplay struct {
	UserName string `json:"userName"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	City     string `json:"city"`
}

// UserClient resolves user display info, cache-aside.
type UserClient struct {
	sc    *ServiceClient
	cfg   config.Registries
	ttl   time.Duration
	users cache.Typed[UserDisplay]
}

// NewUserClient builds a user client over the shared cache store.
func NewUserClient(sc *ServiceClient, store cache.Store, cfg config.Registries, ttl time.Duration) *UserClient {
	return &UserClient{
		sc:    sc,
		cfg:   cfg,
		ttl:   ttl,
		users: cache.NewTyped[UserDisplay](store),
	}
}

// InfoByID returns display info for the given user uuid.
func (c *UserClient) InfoByID(ctx context.Context, tenantID, userID string) (UserDisplay, error) {
	key := cache.Key(tenantID, "user", userID)
	return c.users.GetOrLoad(ctx, key, c.ttl, func(ctx context.Context) (UserDisplay, error) {
		ri, err := c.sc.NewRequestInfo()
		if err != nil {
			return UserDisplay{}, err
		}
		var resp userResponse
		req := userSearchRequest{RequestInfo: ri, TenantID: tenantID, UUID: []string{userID}}
		if err := c.sc.Post(ctx, c.cfg.UserHost, c.cfg.UserSearchPath, searchQuery(tenantID, c.cfg.SearchLimit), req, &resp); err != nil {
			return UserDisplay{}, fmt.Errorf("fetch user %s: %w", userID, err)
		}
		if len(resp.User) == 0 {
			return UserDisplay{}, fmt.Errorf("user %s: %w", userID, sentinel.ErrNotFound)
		}
		u := resp.User[0]
		display := UserDisplay{
			UserName: u.UserName,
			Name:     u.Name,
			City:     u.CorrespondenceCity,
		}
		if len(u.Roles) > 0 {
			display.Role = u.Roles[0].Name
		}
		return display, nil
	})
}
