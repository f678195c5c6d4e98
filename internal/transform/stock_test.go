package transform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"enricher/internal/models"
	"enricher/internal/platform/logger"
	"enricher/internal/registry"
	"enricher/pkg/platform/sentinel"
)

type StockTransformSuite struct {
	suite.Suite
	projects   *fakeProjects
	facilities *fakeFacilities
	users      *fakeUsers
	products   *fakeProducts
	boundaries *fakeBoundaries
	transform  *Stock
}

func (s *StockTransformSuite) SetupTest() {
	s.projects = newFakeProjects()
	s.facilities = &fakeFacilities{m: map[string]registry.Facility{}}
	s.users = &fakeUsers{m: map[string]registry.UserDisplay{}}
	s.products = &fakeProducts{names: map[string]string{}}
	s.boundaries = newFakeBoundaries()
	s.transform = NewStock(s.projects, s.facilities, s.users, s.products, s.boundaries, logger.New())
}

func TestStockTransformSuite(t *testing.T) {
	suite.Run(t, new(StockTransformSuite))
}

func (s *StockTransformSuite) event() models.StockEvent {
	return models.StockEvent{
		ID:                   "stock-1",
		ClientReferenceID:    "client-ref-1",
		TenantID:             "mz",
		FacilityID:           "fac-1",
		ProductVariantID:     "pv-1",
		Quantity:             40,
		TransactionType:      "RECEIVED",
		TransactionReason:    "DISTRIBUTION",
		TransactingPartyID:   "fac-2",
		TransactingPartyType: "WAREHOUSE",
		WayBillNumber:        "WB-7",
		AuditDetails: models.AuditDetails{
			CreatedBy:   "user-1",
			CreatedTime: 1772368245000,
		},
	}
}

func (s *StockTransformSuite) TestTransform() {
	ctx := context.Background()

	s.Run("joins facility, product, user and boundary", func() {
		s.SetupTest()
		target := int64(500)
		s.facilities.m["fac-1"] = registry.Facility{
			ID:    "fac-1",
			Name:  "Central Warehouse",
			Usage: "STORAGE",
			Address: &registry.FacilityAddress{
				Locality: &registry.Locality{Code: "DISTRICT_1"},
			},
			AdditionalFields: &models.AdditionalFields{Fields: []models.Field{
				{Key: "facilityLevel", Value: "DISTRICT"},
				{Key: "facilityTarget", Value: "500"},
			}},
		}
		s.facilities.m["fac-2"] = registry.Facility{ID: "fac-2", Name: "Village Store", Usage: "STORAGE"}
		s.products.names["pv-1"] = "Bednet King Size"
		s.users.m["user-1"] = registry.UserDisplay{UserName: "amelia", Name: "Amelia", Role: "Supervisor", City: "Pemba"}
		s.boundaries.byCode["DISTRICT_1"] = districtTree()

		doc, err := s.transform.Transform(ctx, s.event())
		s.Require().NoError(err)

		s.Equal("Central Warehouse", doc.FacilityName)
		s.Equal("STORAGE", doc.FacilityType)
		s.Equal("DISTRICT", doc.FacilityLevel)
		s.Require().NotNil(doc.FacilityTarget)
		s.Equal(target, *doc.FacilityTarget)
		s.Equal("Village Store", doc.TransactingFacilityName)
		s.Equal("Bednet King Size", doc.ProductName)
		s.Equal("amelia", doc.UserName)
		s.Equal("Supervisor", doc.Role)
		s.Equal("Norte", doc.BoundaryHierarchy["district"])
		s.Equal("DISTRICT_1", doc.BoundaryHierarchyCode["district"])
		s.Equal("2026-03-01", doc.TaskDates)
		s.Equal("2026-03-01 12:30:45", doc.SyncedTimeStamp)
	})

	s.Run("unknown facility keeps the raw id", func() {
		s.SetupTest()
		doc, err := s.transform.Transform(ctx, s.event())
		s.Require().NoError(err)
		s.Equal("fac-1", doc.FacilityName)
		s.Empty(doc.FacilityType)
	})

	s.Run("non-warehouse transacting party is not joined", func() {
		s.SetupTest()
		ev := s.event()
		ev.TransactingPartyID = "user-9"
		ev.TransactingPartyType = "STAFF"

		doc, err := s.transform.Transform(ctx, ev)
		s.Require().NoError(err)
		s.Equal("user-9", doc.TransactingFacilityName)
		s.Equal("STAFF", doc.TransactingFacilityType)
	})

	s.Run("client audit time drives the task date", func() {
		s.SetupTest()
		ev := s.event()
		ev.ClientAuditDetails = &models.AuditDetails{CreatedTime: 1772281845000} // one day earlier

		doc, err := s.transform.Transform(ctx, ev)
		s.Require().NoError(err)
		s.Equal("2026-02-28", doc.TaskDates)
		s.Equal("2026-03-01", doc.SyncedDate)
	})

	s.Run("project reference promotes cycle index and project type", func() {
		s.SetupTest()
		ev := s.event()
		ev.ReferenceID = "p-1"
		ev.ReferenceIDType = "PROJECT"
		s.projects.byID["p-1"] = registry.Project{ID: "p-1", ProjectTypeID: "pt-1"}
		s.projects.types["pt-1"] = registry.ProjectType{
			ID: "pt-1",
			Cycles: []registry.Cycle{
				{ID: 1, StartDate: 1700000000000},
				{ID: 2, StartDate: 1772000000000},
				{ID: 3, StartDate: 1800000000000},
			},
		}
		s.boundaries.byProject["p-1"] = districtTree()

		doc, err := s.transform.Transform(ctx, ev)
		s.Require().NoError(err)
		s.Equal("pt-1", doc.AdditionalDetails["projectTypeId"])
		s.Equal(2, doc.AdditionalDetails["cycleIndex"])
		s.Equal("Norte", doc.BoundaryHierarchy["district"])
	})

	s.Run("additional fields carry into the details and are not recomputed", func() {
		s.SetupTest()
		ev := s.event()
		ev.ReferenceID = "p-1"
		ev.ReferenceIDType = "PROJECT"
		ev.AdditionalFields = &models.AdditionalFields{Fields: []models.Field{
			{Key: "cycleIndex", Value: "7"},
			{Key: "batchNumber", Value: "B-12"},
		}}
		s.projects.byID["p-1"] = registry.Project{ID: "p-1", ProjectTypeID: "pt-1"}
		s.projects.types["pt-1"] = registry.ProjectType{
			ID:     "pt-1",
			Cycles: []registry.Cycle{{ID: 1, StartDate: 1700000000000}},
		}
		s.boundaries.byProject["p-1"] = districtTree()

		doc, err := s.transform.Transform(ctx, ev)
		s.Require().NoError(err)
		s.Equal("7", doc.AdditionalDetails["cycleIndex"])
		s.Equal("B-12", doc.AdditionalDetails["batchNumber"])
		s.Equal("pt-1", doc.AdditionalDetails["projectTypeId"])
	})

	s.Run("missing project on a project reference fails the record", func() {
		s.SetupTest()
		ev := s.event()
		ev.ReferenceID = "p-gone"
		ev.ReferenceIDType = "PROJECT"

		_, err := s.transform.Transform(ctx, ev)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("unresolvable boundary ships an empty hierarchy", func() {
		s.SetupTest()
		ev := s.event()
		s.facilities.m["fac-1"] = registry.Facility{
			ID:   "fac-1",
			Name: "Central Warehouse",
			Address: &registry.FacilityAddress{
				Locality: &registry.Locality{Code: "UNKNOWN"},
			},
		}

		doc, err := s.transform.Transform(ctx, ev)
		s.Require().NoError(err)
		s.Empty(doc.BoundaryHierarchy)
		s.Empty(doc.BoundaryHierarchyCode)
	})
}
