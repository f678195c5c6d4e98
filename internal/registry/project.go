package registry

import (
	"context"
	"fmt"
	"time"

	"enricher/internal/cache"
	"enricher/internal/platform/config"
	"enricher/pkg/platform/sentinel"
)

type projectSearchRequest struct {
	RequestInfo RequestInfo `json:"RequestInfo"`
	Projects    []Project   `json:"Projects"`
}

type projectResponse struct {
	Project []Project `json:"Project"`
}

type projectTypeSearchRequest struct {
	RequestInfo  RequestInfo   `json:"RequestInfo"`
	ProjectTypes []ProjectType `json:"ProjectTypes"`
}

type projectTypeResponse struct {
	ProjectTypes []ProjectType `json:"ProjectTypes"`
}

// ProjectClient resolves projects and project types, cache-aside.
type ProjectClient struct {
	sc       *ServiceClient
	cfg      config.Registries
	ttl      time.Duration
	projects cache.Typed[Project]
	types    cache.Typed[ProjectType]
}

// NewProjectClient builds a project client over the shared cache store.
func NewProjectClient(sc *ServiceClient, store cache.Store, cfg config.Registries, ttl time.Duration) *ProjectClient {
	return &ProjectClient{
		sc:       sc,
		cfg:      cfg,
		ttl:      ttl,
		projects: cache.NewTyped[Project](store),
		types:    cache.NewTyped[ProjectType](store),
	}
}

// ByID returns the project with the given id. ErrNotFound when the registry
// reports no such project.
func (c *ProjectClient) ByID(ctx context.Context, tenantID, projectID string) (Project, error) {
	key := cache.Key(tenantID, "project", projectID)
	return c.projects.GetOrLoad(ctx, key, c.ttl, func(ctx context.Context) (Project, error) {
		return c.searchOne(ctx, tenantID, Project{ID: projectID, TenantID: tenantID}, "id "+projectID)
	})
}

// ByName returns the first project matching name. Name lookups share the id
// key namespace through a criteria hash.
func (c *ProjectClient) ByName(ctx context.Context, tenantID, name string) (Project, error) {
	key := cache.Key(tenantID, "project", cache.CriteriaHash("name", name))
	return c.projects.GetOrLoad(ctx, key, c.ttl, func(ctx context.Context) (Project, error) {
		return c.searchOne(ctx, tenantID, Project{Name: name, TenantID: tenantID}, "name "+name)
	})
}

// TypeByID returns the project type configuration, including cycle windows.
func (c *ProjectClient) TypeByID(ctx context.Context, tenantID, typeID string) (ProjectType, error) {
	key := cache.Key(tenantID, "project-type", typeID)
	return c.types.GetOrLoad(ctx, key, c.ttl, func(ctx context.Context) (ProjectType, error) {
		ri, err := c.sc.NewRequestInfo()
		if err != nil {
			return ProjectType{}, err
		}
		var resp projectTypeResponse
		req := projectTypeSearchRequest{RequestInfo: ri, ProjectTypes: []ProjectType{{ID: typeID}}}
		if err := c.sc.Post(ctx, c.cfg.ProjectHost, c.cfg.ProjectTypePath, searchQuery(tenantID, c.cfg.SearchLimit), req, &resp); err != nil {
			return ProjectType{}, fmt.Errorf("fetch project type %s: %w", typeID, err)
		}
		if len(resp.ProjectTypes) == 0 {
			return ProjectType{}, fmt.Errorf("project type %s: %w", typeID, sentinel.ErrNotFound)
		}
		return resp.ProjectTypes[0], nil
	})
}

func (c *ProjectClient) searchOne(ctx context.Context, tenantID string, criteria Project, what string) (Project, error) {
	ri, err := c.sc.NewRequestInfo()
	if err != nil {
		return Project{}, err
	}
	var resp projectResponse
	req := projectSearchRequest{RequestInfo: ri, Projects: []Project{criteria}}
	if err := c.sc.Post(ctx, c.cfg.ProjectHost, c.cfg.ProjectSearchPath, searchQuery(tenantID, c.cfg.SearchLimit), req, &resp); err != nil {
		return Project{}, fmt.Errorf("fetch project by %s: %w", what, err)
	}
	if len(resp.Project) == 0 {
		return Project{}, fmt.Errorf("project by %s: %w", what, sentinel.ErrNotFound)
	}
	return resp.Project[0], nil
}
