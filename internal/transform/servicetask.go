package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"enricher/internal/boundary"
	"enricher/internal/models"
	"enricher/internal/registry"
)

// Additional-detail keys the service task transformer recognizes. Everything
// else in the payload passes through untouched.
const (
	detailBoundaryCode = "boundaryCode"
	detailLatitude     = "latitude"
	detailLongitude    = "longitude"
)

// ServiceTask builds checklist documents from completed service tasks.
type ServiceTask struct {
	projects    ProjectLookup
	users       UserLookup
	boundaries  BoundaryResolver
	descriptors *DescriptorCache
	logger      *slog.Logger
}

// NewServiceTask builds the service task transformer.
func NewServiceTask(projects ProjectLookup, users UserLookup, boundaries BoundaryResolver, descriptors *DescriptorCache, logger *slog.Logger) *ServiceTask {
	return &ServiceTask{
		projects:    projects,
		users:       users,
		boundaries:  boundaries,
		descriptors: descriptors,
		logger:      logger,
	}
}

// Transform flattens one service task. The checklist descriptor and the
// project it names are required: without them the document has no checklist
// or project identity and cannot be indexed meaningfully.
func (t *ServiceTask) Transform(ctx context.Context, ev models.ServiceTaskEvent) (models.ServiceIndex, error) {
	descriptor, err := t.descriptors.ByDefinitionID(ctx, ev.TenantID, ev.ServiceDefID)
	if err != nil {
		return models.ServiceIndex{}, fmt.Errorf("service task %s descriptor: %w", ev.ID, err)
	}
	project, err := t.joinProject(ctx, ev, descriptor)
	if err != nil {
		return models.ServiceIndex{}, err
	}
	projectType, err := t.projects.TypeByID(ctx, ev.TenantID, project.ProjectTypeID)
	if err != nil {
		return models.ServiceIndex{}, fmt.Errorf("service task %s project type: %w", ev.ID, err)
	}

	doc := models.ServiceIndex{
		ID:                    ev.ID,
		ClientReferenceID:     ev.ClientID,
		TenantID:              ev.TenantID,
		ProjectID:             project.ID,
		ServiceDefinitionID:   ev.ServiceDefID,
		ChecklistName:         descriptor.Checklist,
		SupervisorLevel:       descriptor.SupervisorLevel,
		UserID:                ev.AccountID,
		CreatedTime:           ev.AuditDetails.CreatedTime,
		CreatedBy:             ev.AuditDetails.CreatedBy,
		SyncedTime:            ev.AuditDetails.LastModifiedTime,
		SyncedTimeStamp:       TimestampFromEpoch(ev.AuditDetails.LastModifiedTime),
		Attributes:            ev.Attributes,
		BoundaryHierarchy:     map[string]string{},
		BoundaryHierarchyCode: map[string]string{},
	}

	// Sync metadata tracks the last touch, not creation: a task edited after
	// an offline sync re-ships with fresh dates.
	clientTime := ev.AuditDetails.LastModifiedTime
	if ev.ClientAuditDetails != nil && ev.ClientAuditDetails.LastModifiedTime != 0 {
		clientTime = ev.ClientAuditDetails.LastModifiedTime
	}
	doc.TaskDates = DateFromEpoch(clientTime)

	user := userDisplay(ctx, t.users, t.logger, ev.TenantID, ev.AuditDetails.CreatedBy)
	doc.UserName = user.UserName
	doc.NameOfUser = user.Name
	doc.Role = user.Role
	doc.UserAddress = user.City

	details := decodeDetails(ev.AdditionalDetails)
	doc.GeoPoint = geoPoint(details)

	boundaryCode, _ := details[detailBoundaryCode].(string)
	if err := t.resolveBoundary(ctx, &doc, ev, project.ID, boundaryCode); err != nil {
		return models.ServiceIndex{}, err
	}

	if _, ok := details["projectTypeId"]; !ok {
		details["projectTypeId"] = project.ProjectTypeID
	}
	if _, ok := details["cycleIndex"]; !ok {
		if idx, started := CycleIndex(projectType.Cycles, clientTime); started {
			details["cycleIndex"] = idx
		}
	}
	doc.AdditionalDetails = details
	return doc, nil
}

// joinProject resolves the task's project. A task carrying an account id is
// scoped to that exact project, which may be a sub-project of the one the
// descriptor names; only account-less tasks fall back to the descriptor's
// project name.
func (t *ServiceTask) joinProject(ctx context.Context, ev models.ServiceTaskEvent, descriptor ChecklistDescriptor) (registry.Project, error) {
	if ev.AccountID != "" {
		project, err := t.projects.ByID(ctx, ev.TenantID, ev.AccountID)
		if err != nil {
			return registry.Project{}, fmt.Errorf("service task %s project %s: %w", ev.ID, ev.AccountID, err)
		}
		return project, nil
	}
	project, err := t.projects.ByName(ctx, ev.TenantID, descriptor.ProjectName)
	if err != nil {
		return registry.Project{}, fmt.Errorf("service task %s project %q: %w", ev.ID, descriptor.ProjectName, err)
	}
	return project, nil
}

// resolveBoundary prefers the boundary code the client recorded on the task;
// tasks without one inherit the project's boundary.
func (t *ServiceTask) resolveBoundary(ctx context.Context, doc *models.ServiceIndex, ev models.ServiceTaskEvent, projectID, boundaryCode string) error {
	var (
		tree *boundary.Tree
		err  error
	)
	if boundaryCode != "" {
		tree, err = t.boundaries.Resolve(ctx, ev.TenantID, boundaryCode)
	} else {
		tree, err = t.boundaries.ResolveByProject(ctx, ev.TenantID, projectID)
	}
	if err != nil {
		return bestEffortBoundary(err, t.logger, ev.TenantID, ev.ID)
	}
	doc.BoundaryHierarchy = tree.Labels()
	doc.BoundaryHierarchyCode = tree.Codes()
	return nil
}

// decodeDetails parses the opaque additional-detail object, returning an
// empty map for absent or malformed payloads so recognized keys can still be
// stamped in.
func decodeDetails(raw json.RawMessage) map[string]any {
	details := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &details)
	}
	return details
}

// geoPoint extracts a lon/lat pair from the details when both coordinates
// are present and numeric.
func geoPoint(details map[string]any) []float64 {
	lat, latOK := Coerce(details[detailLatitude])
	lng, lngOK := Coerce(details[detailLongitude])
	if !latOK || !lngOK {
		return nil
	}
	return []float64{lng, lat}
}
