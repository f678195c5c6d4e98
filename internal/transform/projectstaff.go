package transform

import (
	"context"
	"fmt"
	"log/slog"

	"enricher/internal/models"
)

// ProjectStaff builds staff assignment documents.
type ProjectStaff struct {
	projects   ProjectLookup
	users      UserLookup
	boundaries BoundaryResolver
	logger     *slog.Logger
}

// NewProjectStaff builds the staff transformer.
func NewProjectStaff(projects ProjectLookup, users UserLookup, boundaries BoundaryResolver, logger *slog.Logger) *ProjectStaff {
	return &ProjectStaff{
		projects:   projects,
		users:      users,
		boundaries: boundaries,
		logger:     logger,
	}
}

// Transform flattens one staff assignment. The project and its type are
// required: an assignment indexed without them is unfilterable downstream.
// The user join and boundary resolution are best-effort.
func (t *ProjectStaff) Transform(ctx context.Context, ev models.ProjectStaffEvent) (models.ProjectStaffIndex, error) {
	project, err := t.projects.ByID(ctx, ev.TenantID, ev.ProjectID)
	if err != nil {
		return models.ProjectStaffIndex{}, fmt.Errorf("staff %s project join: %w", ev.ID, err)
	}
	projectType, err := t.projects.TypeByID(ctx, ev.TenantID, project.ProjectTypeID)
	if err != nil {
		return models.ProjectStaffIndex{}, fmt.Errorf("staff %s project type join: %w", ev.ID, err)
	}

	doc := models.ProjectStaffIndex{
		ID:                    ev.ID,
		UserID:                ev.UserID,
		ProjectID:             ev.ProjectID,
		TenantID:              ev.TenantID,
		ProjectType:           projectType.Code,
		ProjectTypeID:         project.ProjectTypeID,
		IsDeleted:             ev.IsDeleted,
		TaskDates:             DateFromEpoch(ev.AuditDetails.CreatedTime),
		CreatedTime:           ev.AuditDetails.CreatedTime,
		CreatedBy:             ev.AuditDetails.CreatedBy,
		BoundaryHierarchy:     map[string]string{},
		BoundaryHierarchyCode: map[string]string{},
	}
	if project.Address != nil {
		doc.LocalityCode = project.Address.Boundary
	}

	user := userDisplay(ctx, t.users, t.logger, ev.TenantID, ev.UserID)
	doc.UserName = user.UserName
	doc.NameOfUser = user.Name
	doc.Role = user.Role
	doc.UserAddress = user.City

	tree, err := t.boundaries.ResolveByProject(ctx, ev.TenantID, ev.ProjectID)
	if err != nil {
		if berr := bestEffortBoundary(err, t.logger, ev.TenantID, ev.ID); berr != nil {
			return models.ProjectStaffIndex{}, berr
		}
		return doc, nil
	}
	doc.BoundaryHierarchy = tree.Labels()
	doc.BoundaryHierarchyCode = tree.Codes()
	return doc, nil
}
