package registry

import (
	"context"
	"fmt"

	"enricher/internal/platform/config"
	"enricher/pkg/platform/sentinel"
)

// ServiceDefinition names a checklist form. Code is the dotted composite
// descriptor ("PROJECT.CHECKLIST.ROLE") the transformer decodes.
type ServiceDefinition struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
	Code     string `json:"code"`
}

type serviceDefSearchRequest struct {
	RequestInfo       RequestInfo      `json:"RequestInfo"`
	ServiceDefinition serviceDefFilter `json:"ServiceDefinitionCriteria"`
}

type serviceDefFilter struct {
	ID []string `json:"ids"`
}

type serviceDefResponse struct {
	ServiceDefinitions []ServiceDefinition `json:"ServiceDefinitions"`
}

// ServiceDefinitionClient fetches checklist definitions. Uncached: the
// transformer caches the decoded descriptor, which is the unit it reuses.
type ServiceDefinitionClient struct {
	sc  *ServiceClient
	cfg config.Registries
}

// NewServiceDefinitionClient builds a service definition client.
func NewServiceDefinitionClient(sc *ServiceClient, cfg config.Registries) *ServiceDefinitionClient {
	return &ServiceDefinitionClient{sc: sc, cfg: cfg}
}

// ByID returns the definition with the given id.
func (c *ServiceDefinitionClient) ByID(ctx context.Context, tenantID, defID string) (ServiceDefinition, error) {
	ri, err := c.sc.NewRequestInfo()
	if err != nil {
		return ServiceDefinition{}, err
	}
	var resp serviceDefResponse
	req := serviceDefSearchRequest{RequestInfo: ri, ServiceDefinition: serviceDefFilter{ID: []string{defID}}}
	if err := c.sc.Post(ctx, c.cfg.ServiceDefHost, c.cfg.ServiceDefPath, searchQuery(tenantID, c.cfg.SearchLimit), req, &resp); err != nil {
		return ServiceDefinition{}, fmt.Errorf("fetch service definition %s: %w", defID, err)
	}
	if len(resp.ServiceDefinitions) == 0 {
		return ServiceDefinition{}, fmt.Errorf("service definition %s: %w", defID, sentinel.ErrNotFound)
	}
	return resp.ServiceDefinitions[0], nil
}
