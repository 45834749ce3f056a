package leads

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/models"
)

// Mode selects between full intake validation and partial patch validation.
type Mode int

const (
	// ModeCreate requires the identity trio and defaults every section.
	ModeCreate Mode = iota
	// ModeUpdate validates only the sections present in the payload and
	// merges them field-wise onto the stored record.
	ModeUpdate
)

// Field error reasons.
const (
	ReasonRequired          = "required"
	ReasonInvalidEnum       = "invalid_enum_value"
	ReasonNotANumber        = "not_a_number"
	ReasonInvalidPhone      = "invalid_phone"
	ReasonOtherNeedsDetails = "other_requires_details"
	ReasonNegativeValue     = "negative_value"
	ReasonNotAList          = "not_a_list"
	ReasonInvalidType       = "invalid_type"
)

// phonePattern is the intake boundary rule: optional leading '+', then
// 7 to 15 digits. Richer parsing lives in pkg/phone for the utilities.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

type fieldKind int

const (
	kindText fieldKind = iota
	kindSingle
	kindMulti
	kindInt
	kindDecimal
	kindPhone
)

// fieldRule is one row of the declarative intake schema. The same table
// drives validation, coercion and the Other-requires-details rule, so the
// schema is defined exactly once.
type fieldRule struct {
	Field    string
	Kind     fieldKind
	Options  string // option set key in options.go
	Details  string // paired free-text field for the Other case
	Required bool   // absence passes in update mode; explicit empty never does
}

// SectionNames lists the patchable top-level sections in document order.
var SectionNames = []string{
	"identity",
	"demographics",
	"propertyVision",
	"investmentPreferences",
	"locationPreferences",
	"lifestylePreferences",
	"unitPreferences",
}

var sectionRules = map[string][]fieldRule{
	"identity": {
		{Field: "fullName", Kind: kindText, Required: true},
		{Field: "email", Kind: kindText, Required: true},
		{Field: "phone", Kind: kindPhone, Required: true},
		{Field: "residencyStatus", Kind: kindSingle, Options: "residencyStatus", Details: "residencyDetails"},
		{Field: "discoverySource", Kind: kindSingle, Options: "discoverySource", Details: "discoveryDetails"},
	},
	"demographics": {
		{Field: "ageGroup", Kind: kindSingle, Options: "ageGroup"},
		{Field: "professions", Kind: kindMulti, Options: "profession"},
		{Field: "householdSize", Kind: kindSingle, Options: "householdSize"},
		{Field: "annualIncomeRange", Kind: kindSingle, Options: "annualIncomeRange"},
	},
	"propertyVision": {
		{Field: "priorPurchaseCount", Kind: kindInt},
		{Field: "purposes", Kind: kindMulti, Options: "purpose", Details: "purposesDetails"},
		{Field: "buyingMotivations", Kind: kindMulti, Options: "buyingMotivation", Details: "buyingMotivationsDetails"},
		{Field: "shortTermRental", Kind: kindSingle, Options: "shortTermRental"},
		{Field: "assetTypes", Kind: kindMulti, Options: "assetType", Details: "assetTypesDetails"},
		{Field: "waterSource", Kind: kindSingle, Options: "waterSource", Details: "waterSourceDetails"},
		{Field: "unitConfigurations", Kind: kindMulti, Options: "unitConfiguration", Details: "unitConfigurationsDetails"},
		{Field: "farmlandSizeBucket", Kind: kindSingle, Options: "farmlandSizeBucket"},
		{Field: "farmlandSizeAcres", Kind: kindDecimal},
		{Field: "farmlandVillaConfig", Kind: kindSingle, Options: "farmlandVillaConfig"},
		{Field: "journeyStage", Kind: kindSingle, Options: "journeyStage", Details: "journeyStageDetails"},
		{Field: "explorationDuration", Kind: kindSingle, Options: "explorationDuration"},
		{Field: "purchaseTimeline", Kind: kindSingle, Options: "purchaseTimeline"},
		{Field: "budgetRange", Kind: kindSingle, Options: "budgetRange"},
	},
	"investmentPreferences": {
		{Field: "ownershipStructure", Kind: kindSingle, Options: "ownershipStructure", Details: "ownershipStructureDetails"},
		{Field: "possessionTimeline", Kind: kindSingle, Options: "possessionTimeline", Details: "possessionTimelineDetails"},
		{Field: "managementModel", Kind: kindSingle, Options: "managementModel", Details: "managementModelDetails"},
		{Field: "fundingType", Kind: kindSingle, Options: "fundingType", Details: "fundingTypeDetails"},
	},
	"locationPreferences": {
		{Field: "buyingRegions", Kind: kindMulti, Options: "buyingRegion"},
		{Field: "climateRisksToAvoid", Kind: kindMulti, Options: "climateRisk"},
		{Field: "climatePreferences", Kind: kindMulti, Options: "climatePreference"},
		{Field: "locationPriorities", Kind: kindMulti, Options: "locationPriority"},
		{Field: "expansionRadius", Kind: kindSingle, Options: "expansionRadius"},
	},
	"lifestylePreferences": {
		{Field: "areaType", Kind: kindSingle, Options: "areaType", Details: "areaTypeDetails"},
		{Field: "energyPreference", Kind: kindSingle, Options: "energyPreference"},
		{Field: "natureFeatures", Kind: kindMulti, Options: "natureFeature"},
		{Field: "terrainPreference", Kind: kindSingle, Options: "terrainPreference", Details: "terrainPreferenceDetails"},
		{Field: "viewPreferences", Kind: kindMulti, Options: "viewPreference"},
		{Field: "communityFormat", Kind: kindSingle, Options: "communityFormat", Details: "communityFormatDetails"},
		{Field: "gatedPreference", Kind: kindSingle, Options: "gatedPreference"},
		{Field: "communityFriendlyFor", Kind: kindMulti, Options: "communityFriendlyFor"},
		{Field: "outdoorAmenities", Kind: kindMulti, Options: "outdoorAmenity"},
	},
	"unitPreferences": {
		{Field: "vastuDirections", Kind: kindMulti, Options: "vastuDirection"},
		{Field: "furnishingLevel", Kind: kindSingle, Options: "furnishingLevel"},
		{Field: "interiorStyle", Kind: kindSingle, Options: "interiorStyle", Details: "interiorStyleDetails"},
		{Field: "smartHomeFeatures", Kind: kindMulti, Options: "smartHomeFeature"},
		{Field: "mustHaveFeatures", Kind: kindMulti, Options: "mustHaveFeature", Details: "mustHaveFeaturesDetails"},
	},
}

// ApplyPayload validates payload against the intake schema and merges it
// onto lead. In create mode lead should be a fresh record; in update mode
// it must hold the stored state so absent sections stay untouched and
// present sections merge field-wise. On failure lead is left unusable and
// a *domain.ValidationError is returned.
func ApplyPayload(lead *models.Lead, payload []byte, mode Mode) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return domain.NewBadRequestError("request body must be a JSON object")
	}

	var fieldErrs []domain.FieldError

	for _, section := range SectionNames {
		raw, present := top[section]
		if !present && mode == ModeUpdate {
			continue
		}

		base, err := sectionAsMap(lead, section)
		if err != nil {
			return domain.NewInternalError(err)
		}

		if present {
			var patch map[string]any
			if err := json.Unmarshal(raw, &patch); err != nil {
				fieldErrs = append(fieldErrs, domain.FieldError{Field: section, Reason: ReasonRequired})
				continue
			}
			base = mergeMaps(base, patch)
		}

		errs := validateSection(section, base, mode)
		if len(errs) > 0 {
			fieldErrs = append(fieldErrs, errs...)
			continue
		}

		if err := setSectionFromMap(lead, section, base); err != nil {
			// Free-text fields have no rule row, so a wrong JSON type for
			// one surfaces here rather than in validateSection.
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				field := section
				if typeErr.Field != "" {
					field = section + "." + typeErr.Field
				}
				fieldErrs = append(fieldErrs, domain.FieldError{Field: field, Reason: ReasonInvalidType})
				continue
			}
			return domain.NewInternalError(err)
		}
	}

	if raw, ok := top["dreamHomeNotes"]; ok {
		var notes string
		if err := json.Unmarshal(raw, &notes); err != nil {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "dreamHomeNotes", Reason: ReasonRequired})
		} else {
			lead.DreamHomeNotes = notes
		}
	}

	if len(fieldErrs) > 0 {
		return domain.NewFieldValidationError(fieldErrs)
	}

	Normalize(lead)
	lead.SyncDenormalized()
	return nil
}

// validateSection checks one merged section map against its rules and
// coerces numeric fields in place.
func validateSection(section string, data map[string]any, mode Mode) []domain.FieldError {
	var errs []domain.FieldError

	add := func(field, reason string) {
		errs = append(errs, domain.FieldError{Field: section + "." + field, Reason: reason})
	}

	for _, rule := range sectionRules[section] {
		value, ok := data[rule.Field]
		if !ok || value == nil {
			if rule.Required && mode == ModeCreate {
				add(rule.Field, ReasonRequired)
			}
			continue
		}

		switch rule.Kind {
		case kindText:
			s, isStr := value.(string)
			if !isStr {
				add(rule.Field, ReasonInvalidType)
				continue
			}
			if rule.Required && strings.TrimSpace(s) == "" {
				add(rule.Field, ReasonRequired)
			}

		case kindPhone:
			s, isStr := value.(string)
			if !isStr {
				add(rule.Field, ReasonInvalidType)
				continue
			}
			// An explicit empty phone fails in update mode too; a stored
			// lead must never lose its phone number.
			if s == "" {
				if rule.Required {
					add(rule.Field, ReasonRequired)
				}
				continue
			}
			if !phonePattern.MatchString(s) {
				add(rule.Field, ReasonInvalidPhone)
			}

		case kindSingle:
			s, isStr := value.(string)
			if !isStr {
				add(rule.Field, ReasonInvalidEnum)
				continue
			}
			if s == "" {
				continue
			}
			if !optionAllowed(rule.Options, s) {
				add(rule.Field, ReasonInvalidEnum)
				continue
			}
			if s == OptionOther && rule.Details != "" && detailsEmpty(data, rule.Details) {
				add(rule.Field, ReasonOtherNeedsDetails)
			}

		case kindMulti:
			list, isList := value.([]any)
			if !isList {
				add(rule.Field, ReasonNotAList)
				continue
			}
			sawOther := false
			for _, item := range list {
				s, isStr := item.(string)
				if !isStr || !optionAllowed(rule.Options, s) {
					add(rule.Field, ReasonInvalidEnum)
					continue
				}
				if s == OptionOther {
					sawOther = true
				}
			}
			if sawOther && rule.Details != "" && detailsEmpty(data, rule.Details) {
				add(rule.Field, ReasonOtherNeedsDetails)
			}

		case kindInt, kindDecimal:
			n, err := coerceNumber(value)
			if err != nil {
				add(rule.Field, ReasonNotANumber)
				continue
			}
			if n < 0 {
				add(rule.Field, ReasonNegativeValue)
				continue
			}
			if rule.Kind == kindInt {
				data[rule.Field] = int(n)
			} else {
				data[rule.Field] = n
			}
		}
	}

	return errs
}

// coerceNumber accepts JSON numbers and numeric strings ("2.5").
func coerceNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

func detailsEmpty(data map[string]any, field string) bool {
	s, _ := data[field].(string)
	return strings.TrimSpace(s) == ""
}

// mergeMaps merges patch onto base one field at a time. Nested objects
// (currentLocation) merge recursively; everything else, lists included,
// is replaced wholesale.
func mergeMaps(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		if pm, ok := v.(map[string]any); ok {
			if bm, ok := out[k].(map[string]any); ok {
				out[k] = mergeMaps(bm, pm)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func sectionAsMap(lead *models.Lead, section string) (map[string]any, error) {
	var src any
	switch section {
	case "identity":
		src = lead.Identity
	case "demographics":
		src = lead.Demographics
	case "propertyVision":
		src = lead.PropertyVision
	case "investmentPreferences":
		src = lead.InvestmentPreferences
	case "locationPreferences":
		src = lead.LocationPreferences
	case "lifestylePreferences":
		src = lead.LifestylePreferences
	case "unitPreferences":
		src = lead.UnitPreferences
	default:
		return nil, fmt.Errorf("unknown section %q", section)
	}

	raw, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func setSectionFromMap(lead *models.Lead, section string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	switch section {
	case "identity":
		return json.Unmarshal(raw, &lead.Identity)
	case "demographics":
		return json.Unmarshal(raw, &lead.Demographics)
	case "propertyVision":
		return json.Unmarshal(raw, &lead.PropertyVision)
	case "investmentPreferences":
		return json.Unmarshal(raw, &lead.InvestmentPreferences)
	case "locationPreferences":
		return json.Unmarshal(raw, &lead.LocationPreferences)
	case "lifestylePreferences":
		return json.Unmarshal(raw, &lead.LifestylePreferences)
	case "unitPreferences":
		return json.Unmarshal(raw, &lead.UnitPreferences)
	}
	return fmt.Errorf("unknown section %q", section)
}

// Normalize defaults every list to an empty slice and every implicit
// default so downstream consumers never branch on nil.
func Normalize(lead *models.Lead) {
	ensure := func(s *[]string) {
		if *s == nil {
			*s = []string{}
		}
	}

	ensure(&lead.Demographics.Professions)

	pv := &lead.PropertyVision
	ensure(&pv.Purposes)
	ensure(&pv.BuyingMotivations)
	ensure(&pv.AssetTypes)
	ensure(&pv.UnitConfigurations)

	lp := &lead.LocationPreferences
	ensure(&lp.BuyingRegions)
	ensure(&lp.PreferredCountries)
	ensure(&lp.PreferredStates)
	ensure(&lp.PreferredCities)
	ensure(&lp.ClimateRisksToAvoid)
	ensure(&lp.ClimatePreferences)
	ensure(&lp.LocationPriorities)
	if lp.CurrentLocation.Country == "" {
		lp.CurrentLocation.Country = "India"
	}

	ls := &lead.LifestylePreferences
	ensure(&ls.NatureFeatures)
	ensure(&ls.ViewPreferences)
	ensure(&ls.CommunityFriendlyFor)
	ensure(&ls.OutdoorAmenities)

	up := &lead.UnitPreferences
	ensure(&up.VastuDirections)
	ensure(&up.SmartHomeFeatures)
	ensure(&up.MustHaveFeatures)

	if lead.System.LeadStatus == "" {
		lead.System.LeadStatus = models.LeadStatusNew
	}
}
