package registry

import "enricher/internal/models"

// Wire models for the upstream registries. Only the fields the pipeline
// reads are declared; everything else in the upstream payloads is ignored.

// RequestInfo is the request-context envelope every registry call carries.
type RequestInfo struct {
	APIID     string   `json:"apiId"`
	Ver       string   `json:"ver"`
	Ts        int64    `json:"ts"`
	MsgID     string   `json:"msgId"`
	AuthToken string   `json:"authToken"`
	UserInfo  UserInfo `json:"userInfo"`
}

// UserInfo identifies the calling service principal.
type UserInfo struct {
	UUID     string `json:"uuid"`
	TenantID string `json:"tenantId,omitempty"`
}

// Project is a campaign project.
type Project struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenantId"`
	Name          string          `json:"name"`
	ProjectTypeID string          `json:"projectTypeId"`
	Address       *ProjectAddress `json:"address,omitempty"`
}

// ProjectAddress carries the project's boundary code.
type ProjectAddress struct {
	Boundary string `json:"boundary"`
}

// ProjectType configures a project family, including its delivery cycles.
type ProjectType struct {
	ID     string  `json:"id"`
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Cycles []Cycle `json:"cycles,omitempty"`
}

// Cycle is one configured delivery cycle window. Timestamps are epoch millis.
type Cycle struct {
	ID        int   `json:"id"`
	StartDate int64 `json:"startDate"`
	EndDate   int64 `json:"endDate"`
}

// Facility is a storage or service facility.
type Facility struct {
	ID               string                   `json:"id"`
	TenantID         string                   `json:"tenantId"`
	Name             string                   `json:"name"`
	Usage            string                   `json:"usage,omitempty"`
	IsPermanent      bool                     `json:"isPermanent"`
	StorageCapacity  int64                    `json:"storageCapacity,omitempty"`
	Address          *FacilityAddress         `json:"address,omitempty"`
	AdditionalFields *models.AdditionalFields `json:"additionalFields,omitempty"`
}

// FacilityAddress carries the facility's locality.
type FacilityAddress struct {
	Locality *Locality `json:"locality,omitempty"`
}

// Locality is a boundary reference on an address.
type Locality struct {
	Code string `json:"code"`
}

// LocalityCode returns the facility's boundary code, empty when any link of
// the address chain is missing.
func (f *Facility) LocalityCode() string {
	if f == nil || f.Address == nil || f.Address.Locality == nil {
		return ""
	}
	return f.Address.Locality.Code
}

// User is an upstream user record.
type User struct {
	UUID               string `json:"uuid"`
	UserName           string `json:"userName"`
	Name               string `json:"name"`
	Roles              []Role `json:"roles,omitempty"`
	CorrespondenceCity string `json:"correspondenceCity,omitempty"`
}

// Role is one role grant on a user.
type Role struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Product is a product master record.
type Product struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
}

// ProductVariant is one sellable/distributable variant of a product.
type ProductVariant struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenantId"`
	ProductID string `json:"productId"`
	SKU       string `json:"sku"`
	Variation string `json:"variation"`
}

// BoundaryNode is one administrative boundary as the boundary registry
// reports it: the node itself plus a parent link. A hierarchy lookup returns
// the requested node together with every ancestor as a flat set of nodes.
type BoundaryNode struct {
	Code       string `json:"code"`
	Label      string `json:"label"`
	Name       string `json:"name"`
	ParentCode string `json:"parentCode,omitempty"`
}
