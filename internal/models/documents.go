package models

// Index documents are the flattened, analytics-ready outputs. Boundary
// hierarchies are level-label -> name mappings; levels the resolver could not
// supply are absent keys, never placeholder values. Where a join succeeded
// the display name replaces the raw identifier; where it did not, the raw
// identifier is kept so the document stays usable.

// StockIndex is the denormalized stock movement document.
type StockIndex struct {
	ID                       string            `json:"id"`
	ClientReferenceID        string            `json:"clientReferenceId"`
	TenantID                 string            `json:"tenantId"`
	ProductVariant           string            `json:"productVariant"`
	ProductName              string            `json:"productName"`
	FacilityID               string            `json:"facilityId"`
	FacilityName             string            `json:"facilityName"`
	FacilityType             string            `json:"facilityType"`
	FacilityLevel            string            `json:"facilityLevel,omitempty"`
	FacilityTarget           *int64            `json:"facilityTarget,omitempty"`
	TransactingFacilityID    string            `json:"transactingFacilityId"`
	TransactingFacilityName  string            `json:"transactingFacilityName"`
	TransactingFacilityType  string            `json:"transactingFacilityType"`
	TransactingFacilityLevel string            `json:"transactingFacilityLevel,omitempty"`
	UserName                 string            `json:"userName"`
	NameOfUser               string            `json:"nameOfUser"`
	Role                     string            `json:"role"`
	UserAddress              string            `json:"userAddress"`
	PhysicalCount            int64             `json:"physicalCount"`
	EventType                string            `json:"eventType"`
	Reason                   string            `json:"reason"`
	WaybillNumber            string            `json:"waybillNumber"`
	DateOfEntry              int64             `json:"dateOfEntry"`
	CreatedTime              int64             `json:"createdTime"`
	CreatedBy                string            `json:"createdBy"`
	LastModifiedTime         int64             `json:"lastModifiedTime"`
	LastModifiedBy           string            `json:"lastModifiedBy"`
	TaskDates                string            `json:"taskDates"`
	SyncedDate               string            `json:"syncedDate"`
	SyncedTime               int64             `json:"syncedTime"`
	SyncedTimeStamp          string            `json:"syncedTimeStamp"`
	AdditionalFields         *AdditionalFields `json:"additionalFields,omitempty"`
	BoundaryHierarchy        map[string]string `json:"boundaryHierarchy"`
	BoundaryHierarchyCode    map[string]string `json:"boundaryHierarchyCode"`
	AdditionalDetails        map[string]any    `json:"additionalDetails,omitempty"`
}

// ServiceIndex is the generic checklist (service task) document. Derivative
// finance / special-spraying variants are produced from copies of this by the
// orchestrator's content filters.
type ServiceIndex struct {
	ID                    string            `json:"id"`
	ClientReferenceID     string            `json:"clientReferenceId"`
	TenantID              string            `json:"tenantId"`
	ProjectID             string            `json:"projectId"`
	ServiceDefinitionID   string            `json:"serviceDefinitionId"`
	ChecklistName         string            `json:"checklistName"`
	SupervisorLevel       string            `json:"supervisorLevel"`
	UserID                string            `json:"userId,omitempty"`
	UserName              string            `json:"userName"`
	NameOfUser            string            `json:"nameOfUser"`
	Role                  string            `json:"role"`
	UserAddress           string            `json:"userAddress"`
	CreatedTime           int64             `json:"createdTime"`
	CreatedBy             string            `json:"createdBy"`
	TaskDates             string            `json:"taskDates"`
	SyncedTime            int64             `json:"syncedTime"`
	SyncedTimeStamp       string            `json:"syncedTimeStamp"`
	Attributes            []AttributeValue  `json:"attributes,omitempty"`
	GeoPoint              []float64         `json:"geoPoint,omitempty"`
	BoundaryHierarchy     map[string]string `json:"boundaryHierarchy"`
	BoundaryHierarchyCode map[string]string `json:"boundaryHierarchyCode"`
	AdditionalDetails     map[string]any    `json:"additionalDetails,omitempty"`
}

// Clone returns a deep-enough copy for derivative topics: filters mutate
// attributes and additionalDetails, so those are copied; flat fields and the
// boundary mappings are shared read-only.
func (s ServiceIndex) Clone() ServiceIndex {
	out := s
	if s.Attributes != nil {
		out.Attributes = make([]AttributeValue, len(s.Attributes))
		copy(out.Attributes, s.Attributes)
	}
	if s.AdditionalDetails != nil {
		out.AdditionalDetails = make(map[string]any, len(s.AdditionalDetails))
		for k, v := range s.AdditionalDetails {
			out.AdditionalDetails[k] = v
		}
	}
	return out
}

// ProjectStaffIndex is the denormalized staff assignment document.
type ProjectStaffIndex struct {
	ID                    string            `json:"id"`
	UserID                string            `json:"userId"`
	ProjectID             string            `json:"projectId"`
	TenantID              string            `json:"tenantId"`
	UserName              string            `json:"userName"`
	NameOfUser            string            `json:"nameOfUser"`
	Role                  string            `json:"role"`
	UserAddress           string            `json:"userAddress"`
	ProjectType           string            `json:"projectType"`
	ProjectTypeID         string            `json:"projectTypeId"`
	IsDeleted             bool              `json:"isDeleted"`
	TaskDates             string            `json:"taskDates"`
	CreatedTime           int64             `json:"createdTime"`
	CreatedBy             string            `json:"createdBy"`
	LocalityCode          string            `json:"localityCode,omitempty"`
	BoundaryHierarchy     map[string]string `json:"boundaryHierarchy"`
	BoundaryHierarchyCode map[string]string `json:"boundaryHierarchyCode"`
	AdditionalDetails     map[string]any    `json:"additionalDetails,omitempty"`
}

// ProductVariantIndex is the denormalized product variant document. Variants
// are tenant-level; they carry no boundary hierarchy.
type ProductVariantIndex struct {
	ID               string            `json:"id"`
	TenantID         string            `json:"tenantId"`
	ProductID        string            `json:"productId"`
	ProductName      string            `json:"productName"`
	SKU              string            `json:"sku"`
	Variation        string            `json:"variation"`
	CreatedTime      int64             `json:"createdTime"`
	CreatedBy        string            `json:"createdBy"`
	LastModifiedTime int64             `json:"lastModifiedTime"`
	AdditionalFields *AdditionalFields `json:"additionalFields,omitempty"`
}
