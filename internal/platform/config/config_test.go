package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"save-stock-topic", "update-stock-topic"}, cfg.Kafka.Topics.StockConsume)
	assert.Equal(t, "stock-index-v1", cfg.Kafka.Topics.StockIndex)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 12*time.Hour, cfg.Cache.Boundary)
	assert.Equal(t, 15*time.Minute, cfg.Cache.Entity)
	assert.Equal(t, 8, cfg.Pipeline.Parallelism)
	assert.Equal(t, "ADMIN", cfg.Registries.HierarchyType)
	assert.Equal(t, "quantityUsed", cfg.Pipeline.Remap.NumberFields["SPECIAL_SPRAYING_2"])
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ENRICHER_KAFKA_BROKERS", "b1:9092, b2:9092 ,b1:9092")
	t.Setenv("ENRICHER_TRANSFORM_PARALLELISM", "16")
	t.Setenv("ENRICHER_BOUNDARY_CACHE_TTL", "30m")
	t.Setenv("ENRICHER_FINANCE_CHECKLIST_NAMES", "DAILY_EXPENSES,STOCK_LEDGER")
	t.Setenv("ENRICHER_CHECKLIST_REMAP", `{"stringFields":{"C1":"comment"},"numberFields":{"C2":"count"}}`)

	cfg := FromEnv()

	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 16, cfg.Pipeline.Parallelism)
	assert.Equal(t, 30*time.Minute, cfg.Cache.Boundary)
	assert.Equal(t, []string{"DAILY_EXPENSES", "STOCK_LEDGER"}, cfg.Pipeline.FinanceChecklistNames)
	assert.Equal(t, "comment", cfg.Pipeline.Remap.StringFields["C1"])
	assert.Equal(t, "count", cfg.Pipeline.Remap.NumberFields["C2"])
}

func TestMalformedOverridesFallBack(t *testing.T) {
	t.Setenv("ENRICHER_TRANSFORM_PARALLELISM", "not-a-number")
	t.Setenv("ENRICHER_BOUNDARY_CACHE_TTL", "soon")
	t.Setenv("ENRICHER_CHECKLIST_REMAP", "{broken json")

	cfg := FromEnv()

	assert.Equal(t, 8, cfg.Pipeline.Parallelism)
	assert.Equal(t, 12*time.Hour, cfg.Cache.Boundary)
	assert.Equal(t, "specialSpraying", cfg.Pipeline.Remap.StringFields["SPECIAL_SPRAYING_1"])
}
