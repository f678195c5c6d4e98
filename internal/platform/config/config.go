// Package config builds the process configuration from environment variables
// so main stays lean. Every knob has a development default; production
// deployments override through the environment.
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "enricher/pkg/platform/strings"
)

// Config is the full configuration surface of the enricher.
type Config struct {
	// Addr is the ops HTTP listener (healthz, metrics).
	Addr string
	// AuthSigningKey signs the service token attached to registry requests.
	AuthSigningKey string

	Kafka      Kafka
	Redis      Redis
	Registries Registries
	Cache      CacheTTL
	Pipeline   Pipeline
}

// Kafka holds broker, group and topic wiring.
type Kafka struct {
	Brokers []string
	Group   string
	Topics  Topics
}

// Topics names every consumed and produced topic. Consumption entries are
// lists because create and update flows arrive on separate topics upstream.
type Topics struct {
	StockConsume          []string
	ServiceTaskConsume    []string
	ProjectStaffConsume   []string
	ProductVariantConsume []string

	StockIndex            string
	ServiceTaskIndex      string
	FinanceChecklistIndex string
	SpecialSprayingIndex  string
	ProjectStaffIndex     string
	ProductVariantIndex   string
}

// Redis configures the shared cache tier. An empty URL disables it and the
// pipeline runs on the in-memory tier alone.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Registries locates the upstream HTTP registries.
type Registries struct {
	ProjectHost        string
	ProjectSearchPath  string
	ProjectTypePath    string
	FacilityHost       string
	FacilitySearchPath string
	UserHost           string
	UserSearchPath     string
	ProductHost        string
	ProductVariantPath string
	ProductSearchPath  string
	ServiceDefHost     string
	ServiceDefPath     string
	BoundaryHost       string
	BoundarySearchPath string

	SearchLimit   int
	Timeout       time.Duration
	HierarchyType string
}

// CacheTTL holds the per-kind retention windows. Boundary trees change
// rarely and live long; registry entities are refreshed more often.
type CacheTTL struct {
	Boundary time.Duration
	Entity   time.Duration
}

// Pipeline holds transformation and derivative-topic knobs.
type Pipeline struct {
	Parallelism              int
	FinanceChecklistNames    []string
	SpecialSprayingChecklist string
	Remap                    ChecklistRemap
}

// ChecklistRemap maps recognized attribute codes to named output fields.
// String fields are copied verbatim; number fields go through numeric
// coercion. The code set is deployment data, not transformer logic.
type ChecklistRemap struct {
	StringFields map[string]string `json:"stringFields"`
	NumberFields map[string]string `json:"numberFields"`
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:           getenv("ENRICHER_ADDR", ":8080"),
		AuthSigningKey: getenv("ENRICHER_AUTH_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Kafka: Kafka{
			Brokers: csv(getenv("ENRICHER_KAFKA_BROKERS", "localhost:9092")),
			Group:   getenv("ENRICHER_KAFKA_GROUP", "enricher"),
			Topics: Topics{
				StockConsume:          csv(getenv("ENRICHER_TOPIC_STOCK_CONSUME", "save-stock-topic,update-stock-topic")),
				ServiceTaskConsume:    csv(getenv("ENRICHER_TOPIC_SERVICE_TASK_CONSUME", "save-service-task-topic")),
				ProjectStaffConsume:   csv(getenv("ENRICHER_TOPIC_PROJECT_STAFF_CONSUME", "save-project-staff-topic,update-project-staff-topic")),
				ProductVariantConsume: csv(getenv("ENRICHER_TOPIC_PRODUCT_VARIANT_CONSUME", "save-product-variant-topic")),
				StockIndex:            getenv("ENRICHER_TOPIC_STOCK_INDEX", "stock-index-v1"),
				ServiceTaskIndex:      getenv("ENRICHER_TOPIC_SERVICE_TASK_INDEX", "service-task-index-v1"),
				FinanceChecklistIndex: getenv("ENRICHER_TOPIC_FINANCE_CHECKLIST_INDEX", "finance-checklist-index-v1"),
				SpecialSprayingIndex:  getenv("ENRICHER_TOPIC_SPECIAL_SPRAYING_INDEX", "special-spraying-index-v1"),
				ProjectStaffIndex:     getenv("ENRICHER_TOPIC_PROJECT_STAFF_INDEX", "project-staff-index-v1"),
				ProductVariantIndex:   getenv("ENRICHER_TOPIC_PRODUCT_VARIANT_INDEX", "product-variant-index-v1"),
			},
		},
		Redis: Redis{
			URL:          os.Getenv("ENRICHER_REDIS_URL"),
			PoolSize:     getint("ENRICHER_REDIS_POOL_SIZE", 10),
			MinIdleConns: getint("ENRICHER_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getdur("ENRICHER_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getdur("ENRICHER_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getdur("ENRICHER_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Registries: Registries{
			ProjectHost:        getenv("ENRICHER_PROJECT_HOST", "http://localhost:8083"),
			ProjectSearchPath:  getenv("ENRICHER_PROJECT_SEARCH_PATH", "/project/v1/_search"),
			ProjectTypePath:    getenv("ENRICHER_PROJECT_TYPE_PATH", "/project/type/v1/_search"),
			FacilityHost:       getenv("ENRICHER_FACILITY_HOST", "http://localhost:8084"),
			FacilitySearchPath: getenv("ENRICHER_FACILITY_SEARCH_PATH", "/facility/v1/_search"),
			UserHost:           getenv("ENRICHER_USER_HOST", "http://localhost:8085"),
			UserSearchPath:     getenv("ENRICHER_USER_SEARCH_PATH", "/user/_search"),
			ProductHost:        getenv("ENRICHER_PRODUCT_HOST", "http://localhost:8086"),
			ProductVariantPath: getenv("ENRICHER_PRODUCT_VARIANT_PATH", "/product/variant/v1/_search"),
			ProductSearchPath:  getenv("ENRICHER_PRODUCT_SEARCH_PATH", "/product/v1/_search"),
			ServiceDefHost:     getenv("ENRICHER_SERVICE_DEF_HOST", "http://localhost:8088"),
			ServiceDefPath:     getenv("ENRICHER_SERVICE_DEF_PATH", "/service-request/service/definition/v1/_search"),
			BoundaryHost:       getenv("ENRICHER_BOUNDARY_HOST", "http://localhost:8087"),
			BoundarySearchPath: getenv("ENRICHER_BOUNDARY_SEARCH_PATH", "/boundary-service/boundary/_search"),
			SearchLimit:        getint("ENRICHER_SEARCH_LIMIT", 100),
			Timeout:            getdur("ENRICHER_UPSTREAM_TIMEOUT", 10*time.Second),
			HierarchyType:      getenv("ENRICHER_BOUNDARY_HIERARCHY_TYPE", "ADMIN"),
		},
		Cache: CacheTTL{
			Boundary: getdur("ENRICHER_BOUNDARY_CACHE_TTL", 12*time.Hour),
			Entity:   getdur("ENRICHER_ENTITY_CACHE_TTL", 15*time.Minute),
		},
		Pipeline: Pipeline{
			Parallelism:              getint("ENRICHER_TRANSFORM_PARALLELISM", 8),
			FinanceChecklistNames:    csv(os.Getenv("ENRICHER_FINANCE_CHECKLIST_NAMES")),
			SpecialSprayingChecklist: os.Getenv("ENRICHER_SPECIAL_SPRAYING_CHECKLIST"),
			Remap:                    remapFromEnv(),
		},
	}
}

// defaultRemap mirrors the deployment's spraying checklist codes. Overridden
// wholesale by ENRICHER_CHECKLIST_REMAP.
var defaultRemap = ChecklistRemap{
	StringFields: map[string]string{
		"SPECIAL_SPRAYING_1":               "specialSpraying",
		"SPECIAL_SPRAYING_1.SS_1_OP7.ADT1": "otherSpecialSprayingComment",
		"SPECIAL_SPRAYING_4":               "insecticideUsed",
		"SPECIAL_SPRAYING_5":               "additionalComments",
	},
	NumberFields: map[string]string{
		"SPECIAL_SPRAYING_2": "quantityUsed",
		"SPECIAL_SPRAYING_3": "roomsSprayed",
	},
}

func remapFromEnv() ChecklistRemap {
	raw := os.Getenv("ENRICHER_CHECKLIST_REMAP")
	if raw == "" {
		return defaultRemap
	}
	var remap ChecklistRemap
	if err := json.Unmarshal([]byte(raw), &remap); err != nil {
		return defaultRemap
	}
	return remap
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getdur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	return pstrings.DedupeAndTrim(strings.Split(v, ","))
}
