package transform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"enricher/internal/cache"
	"enricher/pkg/platform/sentinel"
)

// ChecklistDescriptor is the decoded form of a service definition code. The
// code is a dotted composite: project name, checklist name, supervisor role.
// Checklist names may themselves contain dots; the first and last segments
// are fixed, everything between is the checklist.
type ChecklistDescriptor struct {
	ProjectName     string `json:"projectName"`
	Checklist       string `json:"checklist"`
	SupervisorLevel string `json:"supervisorLevel"`
}

// ParseDescriptor splits a dotted service definition code.
func ParseDescriptor(code string) (ChecklistDescriptor, error) {
	parts := strings.Split(code, ".")
	if len(parts) < 3 {
		return ChecklistDescriptor{}, fmt.Errorf("service definition code %q is not project.checklist.role: %w", code, sentinel.ErrInvalidState)
	}
	return ChecklistDescriptor{
		ProjectName:     parts[0],
		Checklist:       strings.Join(parts[1:len(parts)-1], "."),
		SupervisorLevel: parts[len(parts)-1],
	}, nil
}

// DescriptorCache resolves and caches decoded descriptors per definition id.
// The decoded form is the unit the service task transformer reuses, so the
// raw definition fetch stays uncached underneath.
type DescriptorCache struct {
	defs        ServiceDefinitionLookup
	descriptors cache.Typed[ChecklistDescriptor]
	ttl         time.Duration
}

// NewDescriptorCache builds a descriptor cache over the shared store.
func NewDescriptorCache(defs ServiceDefinitionLookup, store cache.Store, ttl time.Duration) *DescriptorCache {
	return &DescriptorCache{
		defs:        defs,
		descriptors: cache.NewTyped[ChecklistDescriptor](store),
		ttl:         ttl,
	}
}

// ByDefinitionID returns the decoded descriptor for a service definition.
func (d *DescriptorCache) ByDefinitionID(ctx context.Context, tenantID, defID string) (ChecklistDescriptor, error) {
	key := cache.Key(tenantID, "checklist-descriptor", defID)
	return d.descriptors.GetOrLoad(ctx, key, d.ttl, func(ctx context.Context) (ChecklistDescriptor, error) {
		def, err := d.defs.ByID(ctx, tenantID, defID)
		if err != nil {
			return ChecklistDescriptor{}, err
		}
		return ParseDescriptor(def.Code)
	})
}
