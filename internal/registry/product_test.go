package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"enricher/internal/cache"
	"enricher/internal/platform/config"
	"enricher/internal/platform/logger"
)

type ProductClientSuite struct {
	suite.Suite
	srv      *httptest.Server
	requests []productVariantFilter
	known    map[string]ProductVariant
	client   *ProductClient
}

func (s *ProductClientSuite) SetupTest() {
	s.requests = nil
	s.known = map[string]ProductVariant{
		"pv-1": {ID: "pv-1", ProductID: "prod-1", SKU: "BEDNET-L", Variation: "Large"},
		"pv-2": {ID: "pv-2", ProductID: "prod-1", SKU: "BEDNET-S"},
	}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req productVariantSearchRequest
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
		s.requests = append(s.requests, req.ProductVariant)

		var found []ProductVariant
		for _, id := range req.ProductVariant.ID {
			if v, ok := s.known[id]; ok {
				found = append(found, v)
			}
		}
		_ = json.NewEncoder(w).Encode(productVariantResponse{ProductVariant: found})
	}))
	s.T().Cleanup(s.srv.Close)

	sc := NewServiceClient(2*time.Second, NewTokenSource("test-key"), logger.New())
	cfg := config.Registries{
		ProductHost:        s.srv.URL,
		ProductVariantPath: "/variant/search",
		SearchLimit:        100,
	}
	s.client = NewProductClient(sc, cache.NewMemory(), cfg, time.Hour)
}

func TestProductClientSuite(t *testing.T) {
	suite.Run(t, new(ProductClientSuite))
}

func (s *ProductClientSuite) TestVariantsByIDs() {
	ctx := context.Background()

	s.Run("one upstream call covers all misses", func() {
		s.SetupTest()
		variants, err := s.client.VariantsByIDs(ctx, "mz", []string{"pv-1", "pv-2"})
		s.Require().NoError(err)
		s.Len(variants, 2)
		s.Require().Len(s.requests, 1)
		s.ElementsMatch([]string{"pv-1", "pv-2"}, s.requests[0].ID)
	})

	s.Run("cached ids are not refetched", func() {
		s.SetupTest()
		_, err := s.client.VariantsByIDs(ctx, "mz", []string{"pv-1"})
		s.Require().NoError(err)

		variants, err := s.client.VariantsByIDs(ctx, "mz", []string{"pv-1", "pv-2"})
		s.Require().NoError(err)
		s.Len(variants, 2)
		s.Require().Len(s.requests, 2)
		s.Equal([]string{"pv-2"}, s.requests[1].ID)
	})

	s.Run("unknown ids are absent, not an error", func() {
		s.SetupTest()
		variants, err := s.client.VariantsByIDs(ctx, "mz", []string{"pv-1", "pv-gone"})
		s.Require().NoError(err)
		s.Len(variants, 1)
		s.NotContains(variants, "pv-gone")
	})

	s.Run("duplicate ids are collapsed", func() {
		s.SetupTest()
		_, err := s.client.VariantsByIDs(ctx, "mz", []string{"pv-1", "pv-1", " pv-1 "})
		s.Require().NoError(err)
		s.Require().Len(s.requests, 1)
		s.Equal([]string{"pv-1"}, s.requests[0].ID)
	})
}

func (s *ProductClientSuite) TestNamesByIDs() {
	ctx := context.Background()

	s.Run("builds display names from sku and variation", func() {
		s.SetupTest()
		names, err := s.client.NamesByIDs(ctx, "mz", []string{"pv-1", "pv-2"})
		s.Require().NoError(err)
		s.Equal([]string{"BEDNET-L Large", "BEDNET-S"}, names)
	})

	s.Run("unresolvable ids keep the raw id", func() {
		s.SetupTest()
		names, err := s.client.NamesByIDs(ctx, "mz", []string{"pv-gone"})
		s.Require().NoError(err)
		s.Equal([]string{"pv-gone"}, names)
	})
}
