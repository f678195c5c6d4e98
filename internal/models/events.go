// Package models holds the upstream event payloads and the downstream index
// documents. Events are immutable once decoded; documents are built once per
// transform and handed to the publisher.
package models

import "encoding/json"

// EventKind tags the four consumed event families.
type EventKind string

const (
	KindStock          EventKind = "stock"
	KindServiceTask    EventKind = "service-task"
	KindProjectStaff   EventKind = "project-staff"
	KindProductVariant EventKind = "product-variant"
)

// AuditDetails carries who/when metadata stamped by the producing service.
// Times are epoch milliseconds.
type AuditDetails struct {
	CreatedBy        string `json:"createdBy"`
	CreatedTime      int64  `json:"createdTime"`
	LastModifiedBy   string `json:"lastModifiedBy"`
	LastModifiedTime int64  `json:"lastModifiedTime"`
}

// Field is one entry of an opaque, order-preserving attribute list. No fixed
// schema is ever assumed; only explicitly recognized keys get promoted.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AdditionalFields is the ordered open attribute list attached to many
// upstream entities.
type AdditionalFields struct {
	Schema  string  `json:"schema,omitempty"`
	Version int     `json:"version,omitempty"`
	Fields  []Field `json:"fields,omitempty"`
}

// Get returns the first value for key and whether it was present.
func (a *AdditionalFields) Get(key string) (string, bool) {
	if a == nil {
		return "", false
	}
	for _, f := range a.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// AttributeValue is one answered checklist attribute. Value is either a
// scalar or a {"value": ...} object; Inner does the tagged extraction.
type AttributeValue struct {
	AttributeCode string `json:"attributeCode"`
	Value         any    `json:"value,omitempty"`
}

// Inner unwraps the nested {"value": ...} object shape, falling back to the
// raw value for scalar shapes. Returns nil when nothing was answered.
func (a AttributeValue) Inner() any {
	if m, ok := a.Value.(map[string]any); ok {
		return m["value"]
	}
	return a.Value
}

// StockEvent is a stock movement (receipt, issue, return) recorded against a
// facility, possibly captured offline first.
type StockEvent struct {
	ID                   string            `json:"id"`
	ClientReferenceID    string            `json:"clientReferenceId"`
	TenantID             string            `json:"tenantId"`
	FacilityID           string            `json:"facilityId"`
	ProductVariantID     string            `json:"productVariantId"`
	Quantity             int64             `json:"quantity"`
	ReferenceID          string            `json:"referenceId"`
	ReferenceIDType      string            `json:"referenceIdType"`
	TransactionType      string            `json:"transactionType"`
	TransactionReason    string            `json:"transactionReason"`
	TransactingPartyID   string            `json:"transactingPartyId"`
	TransactingPartyType string            `json:"transactingPartyType"`
	WayBillNumber        string            `json:"wayBillNumber"`
	DateOfEntry          int64             `json:"dateOfEntry,omitempty"`
	AdditionalFields     *AdditionalFields `json:"additionalFields,omitempty"`
	AuditDetails         AuditDetails      `json:"auditDetails"`
	ClientAuditDetails   *AuditDetails     `json:"clientAuditDetails,omitempty"`
}

// ServiceTaskEvent is a completed checklist instance. AdditionalDetails is an
// opaque object; recognized keys (boundaryCode, lat/lng) are extracted by the
// transformer, everything else passes through untouched.
type ServiceTaskEvent struct {
	ID                 string           `json:"id"`
	ClientID           string           `json:"clientId"`
	TenantID           string           `json:"tenantId"`
	ServiceDefID       string           `json:"serviceDefId"`
	AccountID          string           `json:"accountId,omitempty"`
	Attributes         []AttributeValue `json:"attributes,omitempty"`
	AdditionalDetails  json.RawMessage  `json:"additionalDetails,omitempty"`
	AuditDetails       AuditDetails     `json:"auditDetails"`
	ClientAuditDetails *AuditDetails    `json:"clientAuditDetails,omitempty"`
}

// ProjectStaffEvent assigns a user to a project.
type ProjectStaffEvent struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	ProjectID    string       `json:"projectId"`
	TenantID     string       `json:"tenantId"`
	IsDeleted    bool         `json:"isDeleted"`
	AuditDetails AuditDetails `json:"auditDetails"`
}

// ProductVariantEvent is a product variant create/update.
type ProductVariantEvent struct {
	ID               string            `json:"id"`
	TenantID         string            `json:"tenantId"`
	ProductID        string            `json:"productId"`
	SKU              string            `json:"sku"`
	Variation        string            `json:"variation"`
	AdditionalFields *AdditionalFields `json:"additionalFields,omitempty"`
	AuditDetails     AuditDetails      `json:"auditDetails"`
}
