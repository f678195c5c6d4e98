package transform

import (
	"context"
	"log/slog"

	"enricher/internal/models"
)

// ProductVariant builds product variant documents.
type ProductVariant struct {
	products ProductLookup
	logger   *slog.Logger
}

// NewProductVariant builds the variant transformer.
func NewProductVariant(products ProductLookup, logger *slog.Logger) *ProductVariant {
	return &ProductVariant{products: products, logger: logger}
}

// Transform flattens one variant. The product master join is best-effort;
// a miss keeps the raw product id as the name.
func (t *ProductVariant) Transform(ctx context.Context, ev models.ProductVariantEvent) (models.ProductVariantIndex, error) {
	doc := models.ProductVariantIndex{
		ID:               ev.ID,
		TenantID:         ev.TenantID,
		ProductID:        ev.ProductID,
		ProductName:      ev.ProductID,
		SKU:              ev.SKU,
		Variation:        ev.Variation,
		CreatedTime:      ev.AuditDetails.CreatedTime,
		CreatedBy:        ev.AuditDetails.CreatedBy,
		LastModifiedTime: ev.AuditDetails.LastModifiedTime,
		AdditionalFields: ev.AdditionalFields,
	}

	product, err := t.products.ProductByID(ctx, ev.TenantID, ev.ProductID)
	if err != nil {
		t.logger.Warn("product master lookup failed, keeping raw id",
			"tenant", ev.TenantID, "product", ev.ProductID, "error", err)
		return doc, nil
	}
	doc.ProductName = product.Name
	return doc, nil
}
