package registry

import (
	"context"
	"fmt"

	"enricher/internal/platform/config"
	"enricher/pkg/platform/sentinel"
)

type boundarySearchRequest struct {
	RequestInfo RequestInfo `json:"RequestInfo"`
}

type boundaryResponse struct {
	Boundary []BoundaryNode `json:"Boundary"`
}

// BoundaryClient fetches boundary hierarchies. It is deliberately uncached:
// the resolver caches whole assembled trees, which is the unit callers reuse.
type BoundaryClient struct {
	sc  *ServiceClient
	cfg config.Registries
}

// NewBoundaryClient builds a boundary client.
func NewBoundaryClient(sc *ServiceClient, cfg config.Registries) *BoundaryClient {
	return &BoundaryClient{sc: sc, cfg: cfg}
}

// Hierarchy returns the requested boundary together with all its ancestors
// as a flat node set linked by parent codes. The resolver orders and
// validates the chain.
func (c *BoundaryClient) Hierarchy(ctx context.Context, tenantID, hierarchyType, code string) ([]BoundaryNode, error) {
	ri, err := c.sc.NewRequestInfo()
	if err != nil {
		return nil, err
	}
	q := searchQuery(tenantID, c.cfg.SearchLimit)
	q.Set("boundaryCode", code)
	q.Set("hierarchyType", hierarchyType)
	q.Set("includeParents", "true")

	var resp boundaryResponse
	if err := c.sc.Post(ctx, c.cfg.BoundaryHost, c.cfg.BoundarySearchPath, q, boundarySearchRequest{RequestInfo: ri}, &resp); err != nil {
		return nil, fmt.Errorf("fetch boundary %s: %w", code, err)
	}
	if len(resp.Boundary) == 0 {
		return nil, fmt.Errorf("boundary %s: %w", code, sentinel.ErrNotFound)
	}
	return resp.Boundary, nil
}
