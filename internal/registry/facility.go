package registry

import (
	"context"
	"fmt"
	"time"

	"enricher/internal/cache"
	"enricher/internal/platform/config"
	"enricher/pkg/platform/sentinel"
)

type facilitySearchRequest struct {
	RequestInfo RequestInfo    `json:"RequestInfo"`
	Facility    facilityFilter `json:"Facility"`
}

type facilityFilter struct {
	ID []string `json:"id"`
}

type facilityResponse struct {
	Facilities []Facility `json:"Facilities"`
}

// Additional-field keys the stock transformer promotes off a facility.
const (
	facilityLevelKey  = "facilityLevel"
	facilityTargetKey = "facilityTarget"
)

// FacilityClient resolves facilities, cache-aside.
type FacilityClient struct {
	sc         *ServiceClient
	cfg        config.Registries
	ttl        time.Duration
	facilities cache.Typed[Facility]
}

// NewFacilityClient builds a facility client over the shared cache store.
func NewFacilityClient(sc *ServiceClient, store cache.Store, cfg config.Registries, ttl time.Duration) *FacilityClient {
	return &FacilityClient{
		sc:         sc,
		cfg:        cfg,
		ttl:        ttl,
		facilities: cache.NewTyped[Facility](store),
	}
}

// ByID returns the facility with the given id.
func (c *FacilityClient) ByID(ctx context.Context, tenantID, facilityID string) (Facility, error) {
	key := cache.Key(tenantID, "facility", facilityID)
	return c.facilities.GetOrLoad(ctx, key, c.ttl, func(ctx context.Context) (Facility, error) {
		ri, err := c.sc.NewRequestInfo()
		if err != nil {
			return Facility{}, err
		}
		var resp facilityResponse
		req := facilitySearchRequest{RequestInfo: ri, Facility: facilityFilter{ID: []string{facilityID}}}
		if err := c.sc.Post(ctx, c.cfg.FacilityHost, c.cfg.FacilitySearchPath, searchQuery(tenantID, c.cfg.SearchLimit), req, &resp); err != nil {
			return Facility{}, fmt.Errorf("fetch facility %s: %w", facilityID, err)
		}
		if len(resp.Facilities) == 0 {
			return Facility{}, fmt.Errorf("facility %s: %w", facilityID, sentinel.ErrNotFound)
		}
		return resp.Facilities[0], nil
	})
}

// Level returns the facility's level from its additional fields, empty when
// the deployment does not stamp one.
func (f *Facility) Level() string {
	if f == nil || f.AdditionalFields == nil {
		return ""
	}
	v, _ := f.AdditionalFields.Get(facilityLevelKey)
	return v
}

// Target returns the facility's distribution target, nil when absent or
// malformed.
func (f *Facility) Target() *int64 {
	if f == nil || f.AdditionalFields == nil {
		return nil
	}
	raw, ok := f.AdditionalFields.Get(facilityTargetKey)
	if !ok {
		return nil
	}
	var n int64
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
		return nil
	}
	return &n
}
