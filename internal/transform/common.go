// Package transform turns consumed events into flattened index documents,
// joining registry data through the cache-aside clients. Joins that locate
// display names are best-effort: a miss keeps the raw identifier and the
// document ships anyway. Joins the document structure depends on (project,
// checklist descriptor) fail the record.
package transform

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"enricher/internal/boundary"
	"enricher/internal/cache"
	"enricher/internal/registry"
	"enricher/pkg/platform/sentinel"
)

// ProjectLookup is the project registry slice the transformers need.
type ProjectLookup interface {
	ByID(ctx context.Context, tenantID, projectID string) (registry.Project, error)
	ByName(ctx context.Context, tenantID, name string) (registry.Project, error)
	TypeByID(ctx context.Context, tenantID, typeID string) (registry.ProjectType, error)
}

// FacilityLookup resolves facilities.
type FacilityLookup interface {
	ByID(ctx context.Context, tenantID, facilityID string) (registry.Facility, error)
}

// UserLookup resolves user display info.
type UserLookup interface {
	InfoByID(ctx context.Context, tenantID, userID string) (registry.UserDisplay, error)
}

// ProductLookup resolves product variants and masters.
type ProductLookup interface {
	NamesByIDs(ctx context.Context, tenantID string, ids []string) ([]string, error)
	ProductByID(ctx context.Context, tenantID, productID string) (registry.Product, error)
}

// ServiceDefinitionLookup resolves checklist definitions.
type ServiceDefinitionLookup interface {
	ByID(ctx context.Context, tenantID, defID string) (registry.ServiceDefinition, error)
}

// BoundaryResolver resolves boundary trees by code or through a project.
type BoundaryResolver interface {
	Resolve(ctx context.Context, tenantID, code string) (*boundary.Tree, error)
	ResolveByProject(ctx context.Context, tenantID, projectID string) (*boundary.Tree, error)
}

// Coerce turns a loosely typed attribute value into a number. Strings are
// parsed, numbers pass through. The second return reports whether the value
// was actually numeric; callers log and fall back to zero when it was not.
func Coerce(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// CycleIndex returns the 1-based index of the cycle window a timestamp falls
// into, counting every cycle whose start is at or before it. The second
// return is false when no cycle had started yet; callers omit the field
// rather than writing a zero.
func CycleIndex(cycles []registry.Cycle, at int64) (int, bool) {
	idx := 0
	for _, c := range cycles {
		if c.StartDate != 0 && c.StartDate <= at {
			idx++
		}
	}
	if idx == 0 {
		return 0, false
	}
	return idx, true
}

// DateFromEpoch renders epoch milliseconds as a calendar date in UTC.
func DateFromEpoch(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}

// TimestampFromEpoch renders epoch milliseconds as a full timestamp in UTC.
func TimestampFromEpoch(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05")
}

// userDisplay resolves display info for a user id, falling back to the raw
// id as the user name when the registry cannot supply it. Misses and
// upstream outages are logged apart so outages stay visible.
func userDisplay(ctx context.Context, users UserLookup, logger *slog.Logger, tenantID, userID string) registry.UserDisplay {
	if userID == "" {
		return registry.UserDisplay{}
	}
	display, err := users.InfoByID(ctx, tenantID, userID)
	if err == nil {
		return display
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		logger.Warn("user not found, keeping raw id", "tenant", tenantID, "user", userID)
	default:
		logger.Warn("user lookup failed, keeping raw id", "tenant", tenantID, "user", userID, "error", err)
	}
	return registry.UserDisplay{UserName: userID}
}

// bestEffortBoundary decides what an unresolved boundary means for the
// record. A miss or upstream outage ships the document without a hierarchy.
// A CycleError is malformed data and a cache backend failure means nothing in
// the batch can be trusted; both propagate.
func bestEffortBoundary(err error, logger *slog.Logger, tenantID, ref string) error {
	var cycle *boundary.CycleError
	if errors.As(err, &cycle) || errors.Is(err, cache.ErrBackend) {
		return err
	}
	logger.Warn("boundary unresolved, shipping without hierarchy", "tenant", tenantID, "ref", ref, "error", err)
	return nil
}
