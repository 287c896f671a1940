package verification

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Category enum for uploaded documents
type Category string

const (
	CategoryBusinessLicense     Category = "Business License"
	CategoryBusinessInvoice     Category = "Business Invoice"
	CategoryBusinessCardFront   Category = "Business Card (Front)"
	CategoryBusinessCardBack    Category = "Business Card (Back)"
	CategoryVehicleRegistration Category = "Vehicle Registration"
	CategoryVehicle1            Category = "Vehicle (1/5)"
	CategoryVehicle2            Category = "Vehicle (2/5)"
	CategoryVehicle3            Category = "Vehicle (3/5)"
	CategoryVehicle4            Category = "Vehicle (4/5)"
	CategoryVehicle5            Category = "Vehicle (5/5)"
	CategoryLocationImage1      Category = "Image (1/2)"
	CategoryLocationImage2      Category = "Image (2/2)"
	CategoryUtilityBill         Category = "Utility Bill"
	CategoryTools1              Category = "Tools & Equipment (1/2)"
	CategoryTools2              Category = "Tools & Equipment (2/2)"
)

var allCategories = map[Category]bool{
	CategoryBusinessLicense:     true,
	CategoryBusinessInvoice:     true,
	CategoryBusinessCardFront:   true,
	CategoryBusinessCardBack:    true,
	CategoryVehicleRegistration: true,
	CategoryVehicle1:            true,
	CategoryVehicle2:            true,
	CategoryVehicle3:            true,
	CategoryVehicle4:            true,
	CategoryVehicle5:            true,
	CategoryLocationImage1:      true,
	CategoryLocationImage2:      true,
	CategoryUtilityBill:         true,
	CategoryTools1:              true,
	CategoryTools2:              true,
}

// Valid reports whether c is one of the fixed upload categories.
func (c Category) Valid() bool { return allCategories[c] }

// DocumentRef identifies one uploaded file in external storage.
type DocumentRef struct {
	Category Category
	FileName string
}

// ParseDocumentRefs decodes the documents_json form field, a JSON array of
// [category, filename] pairs.
func ParseDocumentRefs(raw string) ([]DocumentRef, error) {
	var pairs [][]string
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, fmt.Errorf("invalid documents_json: %w", err)
	}
	refs := make([]DocumentRef, 0, len(pairs))
	for _, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("invalid document pair: %v", p)
		}
		ref := DocumentRef{Category: Category(p[0]), FileName: p[1]}
		if !ref.Category.Valid() {
			return nil, fmt.Errorf("unknown document category: %s", p[0])
		}
		if strings.TrimSpace(ref.FileName) == "" {
			return nil, fmt.Errorf("empty file name for category %s", p[0])
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// BusinessSubType enum
type BusinessSubType string

const (
	SubTypeServiceArea    BusinessSubType = "Service Area Business"
	SubTypeStorefrontOnly BusinessSubType = "Storefront Only"
	SubTypeHybrid         BusinessSubType = "Hybrid"
	SubTypeAggregator     BusinessSubType = "Aggregator"
)

// BusinessDetails is the submitted business profile. Immutable per run.
type BusinessDetails struct {
	BusinessName          string          `json:"business_name"`
	BusinessWebsite       string          `json:"business_website,omitempty"`
	DoingBusinessAs       bool            `json:"doing_business_as,omitempty"`
	BusinessTradeName     string          `json:"business_trade_name,omitempty"`
	BusinessType          string          `json:"business_type"`
	BusinessSubType       BusinessSubType `json:"business_sub_type"`
	BusinessAddress       string          `json:"business_address"`
	MailingAddresses      []string        `json:"mailing_addresses,omitempty"`
	MailingAddressesCount int             `json:"mailing_addresses_count"`
}

// ParseBusinessDetails decodes the business_details_json form field.
func ParseBusinessDetails(raw string) (BusinessDetails, error) {
	var bd BusinessDetails
	if err := json.Unmarshal([]byte(raw), &bd); err != nil {
		return bd, fmt.Errorf("invalid business_details_json: %w", err)
	}
	if strings.TrimSpace(bd.BusinessName) == "" {
		return bd, fmt.Errorf("business_name is required")
	}
	if strings.TrimSpace(bd.BusinessAddress) == "" {
		return bd, fmt.Errorf("business_address is required")
	}
	return bd, nil
}

// Status is the ordinal RYG level for one aspect
type Status string

const (
	StatusGreen  Status = "Green"
	StatusYellow Status = "Yellow"
	StatusRed    Status = "Red"
)

// severity order: Red > Yellow > Green
func (s Status) severity() int {
	switch s {
	case StatusRed:
		return 2
	case StatusYellow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the three RYG levels.
func (s Status) Valid() bool {
	return s == StatusGreen || s == StatusYellow || s == StatusRed
}

// AspectAnalysis is one entry of the structured analysis.
type AspectAnalysis struct {
	Aspect             string   `json:"aspect"`
	Status             Status   `json:"status"`
	Justification      string   `json:"justification"`
	EvidenceReferences []string `json:"evidence_references"`
	EvidenceImageLinks []string `json:"evidence_image_links,omitempty"`
}

// AnalysisResponse is the structured output of one verification run.
// Immutable after creation.
type AnalysisResponse struct {
	HighLevelSummary   string           `json:"high_level_summary"`
	StructuredAnalysis []AspectAnalysis `json:"structured_analysis"`
}

// ParseAnalysisResponse validates a candidate LLM text payload against the
// result schema. A payload with no aspect entries or an out-of-range status
// does not count as parsed.
func ParseAnalysisResponse(text string) (*AnalysisResponse, error) {
	var resp AnalysisResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, err
	}
	if len(resp.StructuredAnalysis) == 0 {
		return nil, fmt.Errorf("structured_analysis is empty")
	}
	for _, a := range resp.StructuredAnalysis {
		if !a.Status.Valid() {
			return nil, fmt.Errorf("invalid status %q for aspect %q", a.Status, a.Aspect)
		}
	}
	return &resp, nil
}

// OverallStatus returns the most severe status across all aspect entries,
// lowercased for event payloads.
func (r *AnalysisResponse) OverallStatus() string {
	overall := StatusGreen
	for _, a := range r.StructuredAnalysis {
		if a.Status.severity() > overall.severity() {
			overall = a.Status
		}
	}
	return strings.ToLower(string(overall))
}

var specialCharPattern = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// StatusPayload builds the observability event for a finished run. A nil
// result yields the run_analysis_failed shape with the original error
// message preserved for diagnostics.
func StatusPayload(sessionID string, result *AnalysisResponse, duration time.Duration, runErr error) map[string]string {
	if result == nil {
		msg := ErrNoParsedData.Error()
		if runErr != nil {
			msg = runErr.Error()
		}
		return map[string]string{
			"client_id": sessionID,
			"name":      "run_analysis_failed",
			"error_msg": msg,
		}
	}
	payload := map[string]string{
		"client_id":      sessionID,
		"name":           "run_analysis_ended",
		"duration":       fmt.Sprintf("%.0f", duration.Seconds()),
		"overall_status": result.OverallStatus(),
	}
	for _, a := range result.StructuredAnalysis {
		key := specialCharPattern.ReplaceAllString(a.Aspect, "")
		key = strings.ToLower(strings.ReplaceAll(key, " ", "_"))
		payload[key] = strings.ToLower(string(a.Status))
	}
	return payload
}

// AnalysisRun is the persisted record of one completed run.
type AnalysisRun struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	OverallStatus string    `json:"overall_status"`
	DurationMS    int64     `json:"duration_ms"`
	ResultJSON    string    `json:"result_json,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
