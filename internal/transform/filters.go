package transform

import (
	"fmt"
	"log/slog"
	"strings"

	"enricher/internal/models"
	"enricher/internal/platform/config"
	pstrings "enricher/pkg/platform/strings"
)

// Derivative filters reshape a copy of the generic checklist document for a
// specialized topic. Matching is by checklist name; a document that matches
// no filter only ships on the generic topic.

// FinanceFilter coerces every answered attribute to a number so finance
// dashboards can aggregate without casts. Unparseable answers become zero,
// logged, never dropped.
type FinanceFilter struct {
	checklists map[string]bool
	logger     *slog.Logger
}

// NewFinanceFilter builds the filter over the configured checklist names.
func NewFinanceFilter(checklists []string, logger *slog.Logger) *FinanceFilter {
	names := pstrings.DedupeAndTrimLower(checklists)
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return &FinanceFilter{checklists: set, logger: logger}
}

// Matches reports whether the document's checklist is a finance checklist.
func (f *FinanceFilter) Matches(doc models.ServiceIndex) bool {
	return f.checklists[strings.ToLower(strings.TrimSpace(doc.ChecklistName))]
}

// Apply returns the finance variant of the document. The attribute shape is
// kept as-is: object-valued answers get their inner value swapped, scalar
// answers are replaced outright.
func (f *FinanceFilter) Apply(doc models.ServiceIndex) models.ServiceIndex {
	out := doc.Clone()
	for i, attr := range out.Attributes {
		amount, ok := Coerce(attr.Inner())
		if !ok {
			f.logger.Warn("non-numeric finance attribute coerced to zero",
				"document", doc.ID, "attribute", attr.AttributeCode)
		}
		if obj, isObj := attr.Value.(map[string]any); isObj {
			swapped := make(map[string]any, len(obj))
			for k, v := range obj {
				swapped[k] = v
			}
			swapped["value"] = amount
			out.Attributes[i].Value = swapped
			continue
		}
		out.Attributes[i].Value = amount
	}
	return out
}

// SprayingFilter remaps recognized spraying attribute codes into named
// additional-detail fields and strips the raw attribute list, which the
// spraying topic's consumers never read.
type SprayingFilter struct {
	checklist string
	remap     config.ChecklistRemap
	logger    *slog.Logger
}

// NewSprayingFilter builds the filter for one checklist name.
func NewSprayingFilter(checklist string, remap config.ChecklistRemap, logger *slog.Logger) *SprayingFilter {
	return &SprayingFilter{checklist: checklist, remap: remap, logger: logger}
}

// Matches reports whether the document is a spraying checklist.
func (f *SprayingFilter) Matches(doc models.ServiceIndex) bool {
	return f.checklist != "" && strings.EqualFold(doc.ChecklistName, f.checklist)
}

// Apply returns the spraying variant of the document.
func (f *SprayingFilter) Apply(doc models.ServiceIndex) models.ServiceIndex {
	out := doc.Clone()
	if out.AdditionalDetails == nil {
		out.AdditionalDetails = map[string]any{}
	}
	for _, attr := range out.Attributes {
		if field, ok := f.remap.StringFields[attr.AttributeCode]; ok {
			if v := attr.Inner(); v != nil {
				out.AdditionalDetails[field] = fmt.Sprintf("%v", v)
			}
			continue
		}
		if field, ok := f.remap.NumberFields[attr.AttributeCode]; ok {
			amount, numeric := Coerce(attr.Inner())
			if !numeric {
				f.logger.Warn("non-numeric spraying attribute coerced to zero",
					"document", doc.ID, "attribute", attr.AttributeCode)
			}
			out.AdditionalDetails[field] = amount
		}
	}
	out.Attributes = nil
	return out
}
