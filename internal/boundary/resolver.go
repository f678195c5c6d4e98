// Package boundary resolves administrative boundary codes into ordered
// ancestor chains and flattens them for document enrichment.
package boundary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"enricher/internal/cache"
	"enricher/internal/registry"
	"enricher/pkg/platform/sentinel"
)

// Node is one level of the administrative hierarchy. Label names the level
// ("province", "district", ...), Name is the region itself.
type Node struct {
	Code       string `json:"code"`
	Label      string `json:"label"`
	Name       string `json:"name"`
	ParentCode string `json:"parentCode,omitempty"`
}

// Tree is the ordered chain from the hierarchy root down to the resolved
// node. ParentNodes runs root first; an empty ParentNodes means the resolved
// node is itself the root.
type Tree struct {
	ParentNodes []Node `json:"parentNodes"`
	Node        Node   `json:"boundaryNode"`
}

// Labels projects the tree into the flat level-label -> region-name mapping
// documents carry. Levels without a name stay absent; no placeholders.
func (t *Tree) Labels() map[string]string {
	out := make(map[string]string, len(t.ParentNodes)+1)
	for _, n := range append(append([]Node{}, t.ParentNodes...), t.Node) {
		if n.Label != "" && n.Name != "" {
			out[n.Label] = n.Name
		}
	}
	return out
}

// Codes is Labels with boundary codes as values.
func (t *Tree) Codes() map[string]string {
	out := make(map[string]string, len(t.ParentNodes)+1)
	for _, n := range append(append([]Node{}, t.ParentNodes...), t.Node) {
		if n.Label != "" && n.Code != "" {
			out[n.Label] = n.Code
		}
	}
	return out
}

// CycleError reports malformed hierarchy data whose parent links revisit a
// code. Fatal for the resolution; the affected record is skipped, never
// silently looped.
type CycleError struct {
	Code  string
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("boundary %s: parent chain revisits a code (walked %s)", e.Code, strings.Join(e.Chain, " -> "))
}

// Client is the slice of the boundary registry the resolver needs.
type Client interface {
	Hierarchy(ctx context.Context, tenantID, hierarchyType, code string) ([]registry.BoundaryNode, error)
}

// ProjectLookup locates a project so its address boundary can seed a
// resolution when the record itself carries no locality.
type ProjectLookup interface {
	ByID(ctx context.Context, tenantID, projectID string) (registry.Project, error)
}

// Resolver assembles and caches boundary trees per (tenant, type, code).
type Resolver struct {
	client        Client
	projects      ProjectLookup
	trees         cache.Typed[Tree]
	ttl           time.Duration
	hierarchyType string
	logger        *slog.Logger
}

// NewResolver builds a resolver over the shared cache store.
func NewResolver(client Client, projects ProjectLookup, store cache.Store, hierarchyType string, ttl time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{
		client:        client,
		projects:      projects,
		trees:         cache.NewTyped[Tree](store),
		ttl:           ttl,
		hierarchyType: hierarchyType,
		logger:        logger,
	}
}

// Resolve returns the ancestor chain for code, terminating at the tenant
// root. A parent cycle fails with CycleError rather than looping.
func (r *Resolver) Resolve(ctx context.Context, tenantID, code string) (*Tree, error) {
	key := cache.Key(tenantID, "boundary", r.hierarchyType, code)
	tree, err := r.trees.GetOrLoad(ctx, key, r.ttl, func(ctx context.Context) (Tree, error) {
		nodes, err := r.client.Hierarchy(ctx, tenantID, r.hierarchyType, code)
		if err != nil {
			return Tree{}, err
		}
		return assemble(code, nodes)
	})
	if err != nil {
		r.logger.Debug("boundary resolution failed",
			"tenant", tenantID,
			"code", code,
			"error", err,
		)
		return nil, err
	}
	return &tree, nil
}

// ResolveByProject resolves the boundary of the project's address. Used when
// a record carries no locality code of its own.
func (r *Resolver) ResolveByProject(ctx context.Context, tenantID, projectID string) (*Tree, error) {
	project, err := r.projects.ByID(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	if project.Address == nil || project.Address.Boundary == "" {
		return nil, fmt.Errorf("project %s has no boundary: %w", projectID, sentinel.ErrNotFound)
	}
	return r.Resolve(ctx, tenantID, project.Address.Boundary)
}

// assemble orders the flat node set into a root-first chain by walking
// parent links up from code. Every visited code is tracked; revisiting one
// is a CycleError.
func assemble(code string, nodes []registry.BoundaryNode) (Tree, error) {
	byCode := make(map[string]registry.BoundaryNode, len(nodes))
	for _, n := range nodes {
		byCode[n.Code] = n
	}

	start, ok := byCode[code]
	if !ok {
		return Tree{}, fmt.Errorf("boundary %s missing from hierarchy response: %w", code, sentinel.ErrNotFound)
	}

	seen := map[string]bool{}
	var chain []Node
	for current, walking := start, true; walking; {
		if seen[current.Code] {
			return Tree{}, &CycleError{Code: code, Chain: chainCodes(chain)}
		}
		seen[current.Code] = true
		chain = append(chain, Node{
			Code:       current.Code,
			Label:      current.Label,
			Name:       current.Name,
			ParentCode: current.ParentCode,
		})
		if current.ParentCode == "" {
			walking = false
			continue
		}
		parent, found := byCode[current.ParentCode]
		if !found {
			// Upstream omitted an ancestor; treat the last known node as
			// the effective root rather than failing the record.
			walking = false
			continue
		}
		current = parent
	}

	// chain is leaf-first; flip to root-first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return Tree{ParentNodes: chain[:len(chain)-1], Node: chain[len(chain)-1]}, nil
}

func chainCodes(chain []Node) []string {
	codes := make([]string, 0, len(chain))
	for _, n := range chain {
		codes = append(codes, n.Code)
	}
	return codes
}
