package transform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"enricher/internal/boundary"
	"enricher/internal/models"
	"enricher/internal/registry"
)

// Reference types a stock movement can point at.
const (
	referenceTypeProject = "PROJECT"
	partyTypeWarehouse   = "WAREHOUSE"
)

// Stock builds denormalized stock movement documents.
type Stock struct {
	projects   ProjectLookup
	facilities FacilityLookup
	users      UserLookup
	products   ProductLookup
	boundaries BoundaryResolver
	logger     *slog.Logger
}

// NewStock builds the stock transformer.
func NewStock(projects ProjectLookup, facilities FacilityLookup, users UserLookup, products ProductLookup, boundaries BoundaryResolver, logger *slog.Logger) *Stock {
	return &Stock{
		projects:   projects,
		facilities: facilities,
		users:      users,
		products:   products,
		boundaries: boundaries,
		logger:     logger,
	}
}

// Transform flattens one stock event. The facility, transacting party,
// product and user joins are best-effort; a project-referenced movement
// requires the project and its type so the cycle index stays trustworthy.
func (t *Stock) Transform(ctx context.Context, ev models.StockEvent) (models.StockIndex, error) {
	doc := models.StockIndex{
		ID:                    ev.ID,
		ClientReferenceID:     ev.ClientReferenceID,
		TenantID:              ev.TenantID,
		ProductVariant:        ev.ProductVariantID,
		FacilityID:            ev.FacilityID,
		TransactingFacilityID: ev.TransactingPartyID,
		PhysicalCount:         ev.Quantity,
		EventType:             ev.TransactionType,
		Reason:                ev.TransactionReason,
		WaybillNumber:         ev.WayBillNumber,
		DateOfEntry:           ev.DateOfEntry,
		CreatedTime:           ev.AuditDetails.CreatedTime,
		CreatedBy:             ev.AuditDetails.CreatedBy,
		LastModifiedTime:      ev.AuditDetails.LastModifiedTime,
		LastModifiedBy:        ev.AuditDetails.LastModifiedBy,
		AdditionalFields:      ev.AdditionalFields,
		AdditionalDetails:     detailsFromFields(ev.AdditionalFields),
		BoundaryHierarchy:     map[string]string{},
		BoundaryHierarchyCode: map[string]string{},
	}

	clientTime := ev.AuditDetails.CreatedTime
	if ev.ClientAuditDetails != nil && ev.ClientAuditDetails.CreatedTime != 0 {
		clientTime = ev.ClientAuditDetails.CreatedTime
	}
	doc.TaskDates = DateFromEpoch(clientTime)
	doc.SyncedTime = ev.AuditDetails.CreatedTime
	doc.SyncedDate = DateFromEpoch(ev.AuditDetails.CreatedTime)
	doc.SyncedTimeStamp = TimestampFromEpoch(ev.AuditDetails.CreatedTime)

	facility, ok := t.joinFacility(ctx, ev.TenantID, ev.FacilityID)
	if ok {
		doc.FacilityName = facility.Name
		doc.FacilityType = facility.Usage
		doc.FacilityLevel = facility.Level()
		doc.FacilityTarget = facility.Target()
	} else {
		doc.FacilityName = ev.FacilityID
	}

	if strings.EqualFold(ev.TransactingPartyType, partyTypeWarehouse) {
		if tf, tok := t.joinFacility(ctx, ev.TenantID, ev.TransactingPartyID); tok {
			doc.TransactingFacilityName = tf.Name
			doc.TransactingFacilityType = tf.Usage
			doc.TransactingFacilityLevel = tf.Level()
		} else {
			doc.TransactingFacilityName = ev.TransactingPartyID
			doc.TransactingFacilityType = ev.TransactingPartyType
		}
	} else {
		doc.TransactingFacilityName = ev.TransactingPartyID
		doc.TransactingFacilityType = ev.TransactingPartyType
	}

	if names, err := t.products.NamesByIDs(ctx, ev.TenantID, []string{ev.ProductVariantID}); err != nil {
		t.logger.Warn("product variant lookup failed, keeping raw id",
			"tenant", ev.TenantID, "variant", ev.ProductVariantID, "error", err)
		doc.ProductName = ev.ProductVariantID
	} else {
		doc.ProductName = strings.Join(names, ", ")
	}

	user := userDisplay(ctx, t.users, t.logger, ev.TenantID, ev.AuditDetails.CreatedBy)
	doc.UserName = user.UserName
	doc.NameOfUser = user.Name
	doc.Role = user.Role
	doc.UserAddress = user.City

	// Boundary comes from the facility's own locality when it has one;
	// project-referenced movements fall back to the project's boundary.
	localityCode := ""
	if ok {
		localityCode = facility.LocalityCode()
	}
	if err := t.resolveBoundary(ctx, &doc, ev, localityCode); err != nil {
		return models.StockIndex{}, err
	}

	if ev.ReferenceIDType == referenceTypeProject && ev.ReferenceID != "" {
		if err := t.promoteProjectDetails(ctx, &doc, ev, clientTime); err != nil {
			return models.StockIndex{}, err
		}
	}
	return doc, nil
}

func (t *Stock) joinFacility(ctx context.Context, tenantID, facilityID string) (registry.Facility, bool) {
	if facilityID == "" {
		return registry.Facility{}, false
	}
	f, err := t.facilities.ByID(ctx, tenantID, facilityID)
	if err != nil {
		t.logger.Warn("facility lookup failed, keeping raw id",
			"tenant", tenantID, "facility", facilityID, "error", err)
		return registry.Facility{}, false
	}
	return f, true
}

func (t *Stock) resolveBoundary(ctx context.Context, doc *models.StockIndex, ev models.StockEvent, localityCode string) error {
	var (
		tree *boundary.Tree
		err  error
	)
	switch {
	case localityCode != "":
		tree, err = t.boundaries.Resolve(ctx, ev.TenantID, localityCode)
	case ev.ReferenceIDType == referenceTypeProject && ev.ReferenceID != "":
		tree, err = t.boundaries.ResolveByProject(ctx, ev.TenantID, ev.ReferenceID)
	default:
		return nil
	}
	if err != nil {
		return bestEffortBoundary(err, t.logger, ev.TenantID, ev.ID)
	}
	doc.BoundaryHierarchy = tree.Labels()
	doc.BoundaryHierarchyCode = tree.Codes()
	return nil
}

// detailsFromFields lifts the event's open attribute list into the mutable
// details map. Seeding it before any promotion keeps client-recorded values
// (a cycleIndex stamped offline, say) ahead of recomputed ones.
func detailsFromFields(fields *models.AdditionalFields) map[string]any {
	details := map[string]any{}
	if fields == nil {
		return details
	}
	for _, f := range fields.Fields {
		details[f.Key] = f.Value
	}
	return details
}

// promoteProjectDetails stamps cycleIndex and projectTypeId into the
// document's additional details. The project and its type are required here:
// shipping a project-scoped movement without them would misreport the cycle.
func (t *Stock) promoteProjectDetails(ctx context.Context, doc *models.StockIndex, ev models.StockEvent, at int64) error {
	project, err := t.projects.ByID(ctx, ev.TenantID, ev.ReferenceID)
	if err != nil {
		return fmt.Errorf("stock %s project join: %w", ev.ID, err)
	}
	projectType, err := t.projects.TypeByID(ctx, ev.TenantID, project.ProjectTypeID)
	if err != nil {
		return fmt.Errorf("stock %s project type join: %w", ev.ID, err)
	}

	if _, ok := doc.AdditionalDetails["projectTypeId"]; !ok {
		doc.AdditionalDetails["projectTypeId"] = project.ProjectTypeID
	}
	if _, ok := doc.AdditionalDetails["cycleIndex"]; !ok {
		if idx, started := CycleIndex(projectType.Cycles, at); started {
			doc.AdditionalDetails["cycleIndex"] = idx
		}
	}
	return nil
}
