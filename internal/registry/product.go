package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"enricher/internal/cache"
	"enricher/internal/platform/config"
	"enricher/pkg/platform/sentinel"
	pstrings "enricher/pkg/platform/strings"
)

type productVariantSearchRequest struct {
	RequestInfo    RequestInfo          `json:"RequestInfo"`
	ProductVariant productVariantFilter `json:"ProductVariant"`
}

type productVariantFilter struct {
	ID []string `json:"id"`
}

type productVariantResponse struct {
	ProductVariant []ProductVariant `json:"ProductVariant"`
}

type productSearchRequest struct {
	RequestInfo RequestInfo   `json:"RequestInfo"`
	Product     productFilter `json:"Product"`
}

type productFilter struct {
	ID []string `json:"id"`
}

type productResponse struct {
	Product []Product `json:"Product"`
}

// ProductClient resolves product variants in batch, cache-aside: cached ids
// are served locally and a single upstream call covers only the misses,
// write-through populating each returned variant.
type ProductClient struct {
	sc       *ServiceClient
	cfg      config.Registries
	ttl      time.Duration
	variants cache.Typed[ProductVariant]
	products cache.Typed[Product]
}

// NewProductClient builds a product client over the shared cache store.
func NewProductClient(sc *ServiceClient, store cache.Store, cfg config.Registries, ttl time.Duration) *ProductClient {
	return &ProductClient{
		sc:       sc,
		cfg:      cfg,
		ttl:      ttl,
		variants: cache.NewTyped[ProductVariant](store),
		products: cache.NewTyped[Product](store),
	}
}

// ProductByID returns the product master record for one id.
func (c *ProductClient) ProductByID(ctx context.Context, tenantID, productID string) (Product, error) {
	key := cache.Key(tenantID, "product", productID)
	return c.products.GetOrLoad(ctx, key, c.ttl, func(ctx context.Context) (Product, error) {
		ri, err := c.sc.NewRequestInfo()
		if err != nil {
			return Product{}, err
		}
		var resp productResponse
		req := productSearchRequest{RequestInfo: ri, Product: productFilter{ID: []string{productID}}}
		if err := c.sc.Post(ctx, c.cfg.ProductHost, c.cfg.ProductSearchPath, searchQuery(tenantID, c.cfg.SearchLimit), req, &resp); err != nil {
			return Product{}, fmt.Errorf("fetch product %s: %w", productID, err)
		}
		if len(resp.Product) == 0 {
			return Product{}, fmt.Errorf("product %s: %w", productID, sentinel.ErrNotFound)
		}
		return resp.Product[0], nil
	})
}

// VariantsByIDs returns the variants found for the given ids. Ids the
// upstream does not know are simply absent from the result; only transport
// failures return an error.
func (c *ProductClient) VariantsByIDs(ctx context.Context, tenantID string, ids []string) (map[string]ProductVariant, error) {
	ids = pstrings.DedupeAndTrim(ids)
	found := make(map[string]ProductVariant, len(ids))
	var misses []string
	for _, id := range ids {
		v, ok, err := c.variants.Get(ctx, cache.Key(tenantID, "product-variant", id))
		if err != nil {
			return nil, err
		}
		if ok {
			found[id] = v
			continue
		}
		misses = append(misses, id)
	}
	if len(misses) == 0 {
		return found, nil
	}

	ri, err := c.sc.NewRequestInfo()
	if err != nil {
		return nil, err
	}
	var resp productVariantResponse
	req := productVariantSearchRequest{RequestInfo: ri, ProductVariant: productVariantFilter{ID: misses}}
	if err := c.sc.Post(ctx, c.cfg.ProductHost, c.cfg.ProductVariantPath, searchQuery(tenantID, c.cfg.SearchLimit), req, &resp); err != nil {
		return nil, fmt.Errorf("fetch product variants: %w", err)
	}
	for _, v := range resp.ProductVariant {
		found[v.ID] = v
		if err := c.variants.Put(ctx, cache.Key(tenantID, "product-variant", v.ID), v, c.ttl); err != nil {
			return nil, err
		}
	}
	return found, nil
}

// NamesByIDs returns a display name per requested id, in request order. An
// id without a resolvable variant keeps the raw id as its name.
func (c *ProductClient) NamesByIDs(ctx context.Context, tenantID string, ids []string) ([]string, error) {
	variants, err := c.VariantsByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ids))
	for _, id := range pstrings.DedupeAndTrim(ids) {
		v, ok := variants[id]
		if !ok {
			names = append(names, id)
			continue
		}
		name := v.SKU
		if name == "" {
			name = v.ProductID
		}
		if v.Variation != "" {
			name = name + " " + v.Variation
		}
		names = append(names, strings.TrimSpace(name))
	}
	return names, nil
}
