package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/models"
)

func minimalIntake() []byte {
	return []byte(`{
		"identity": {
			"fullName": "Asha Rao",
			"email": "asha@example.com",
			"phone": "+919876543210"
		}
	}`)
}

func fieldReasons(t *testing.T, err error) map[string]string {
	t.Helper()
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	out := make(map[string]string, len(ve.Fields))
	for _, fe := range ve.Fields {
		out[fe.Field] = fe.Reason
	}
	return out
}

func TestApplyPayloadCreateMinimal(t *testing.T) {
	lead := &models.Lead{}
	err := ApplyPayload(lead, minimalIntake(), ModeCreate)
	require.NoError(t, err)

	assert.Equal(t, "Asha Rao", lead.Identity.FullName)
	assert.Equal(t, "+919876543210", lead.Identity.Phone)
	assert.Equal(t, models.LeadStatusNew, lead.System.LeadStatus)

	// Denormalized columns follow the identity section.
	assert.Equal(t, "+919876543210", lead.Phone)
	assert.Equal(t, "asha@example.com", lead.Email)
	assert.Equal(t, "Asha Rao", lead.Name)

	// Lists default to empty, never nil.
	assert.NotNil(t, lead.Demographics.Professions)
	assert.NotNil(t, lead.PropertyVision.AssetTypes)
	assert.NotNil(t, lead.UnitPreferences.VastuDirections)
	assert.Equal(t, "India", lead.LocationPreferences.CurrentLocation.Country)
}

func TestApplyPayloadCreateMissingIdentity(t *testing.T) {
	lead := &models.Lead{}
	err := ApplyPayload(lead, []byte(`{"identity": {"fullName": "No Contact"}}`), ModeCreate)

	reasons := fieldReasons(t, err)
	assert.Equal(t, ReasonRequired, reasons["identity.email"])
	assert.Equal(t, ReasonRequired, reasons["identity.phone"])
	assert.NotContains(t, reasons, "identity.fullName")
}

func TestApplyPayloadInvalidPhone(t *testing.T) {
	lead := &models.Lead{}
	err := ApplyPayload(lead, []byte(`{
		"identity": {"fullName": "Bad Phone", "email": "b@example.com", "phone": "not-a-phone"}
	}`), ModeCreate)

	reasons := fieldReasons(t, err)
	assert.Equal(t, ReasonInvalidPhone, reasons["identity.phone"])
}

func TestApplyPayloadInvalidEnumValue(t *testing.T) {
	lead := &models.Lead{}
	err := ApplyPayload(lead, []byte(`{
		"identity": {"fullName": "A", "email": "a@example.com", "phone": "+911234567890"},
		"demographics": {"ageGroup": "Ancient"}
	}`), ModeCreate)

	reasons := fieldReasons(t, err)
	assert.Equal(t, ReasonInvalidEnum, reasons["demographics.ageGroup"])
}

func TestApplyPayloadOtherRequiresDetails(t *testing.T) {
	t.Run("single select", func(t *testing.T) {
		lead := &models.Lead{}
		err := ApplyPayload(lead, []byte(`{
			"identity": {
				"fullName": "A", "email": "a@example.com", "phone": "+911234567890",
				"residencyStatus": "Other"
			}
		}`), ModeCreate)

		reasons := fieldReasons(t, err)
		assert.Equal(t, ReasonOtherNeedsDetails, reasons["identity.residencyStatus"])
	})

	t.Run("single select with details", func(t *testing.T) {
		lead := &models.Lead{}
		err := ApplyPayload(lead, []byte(`{
			"identity": {
				"fullName": "A", "email": "a@example.com", "phone": "+911234567890",
				"residencyStatus": "Other", "residencyDetails": "Dual residency"
			}
		}`), ModeCreate)
		require.NoError(t, err)
		assert.Equal(t, "Other", lead.Identity.ResidencyStatus)
	})

	t.Run("multi select", func(t *testing.T) {
		lead := &models.Lead{}
		err := ApplyPayload(lead, []byte(`{
			"identity": {"fullName": "A", "email": "a@example.com", "phone": "+911234567890"},
			"propertyVision": {"assetTypes": ["Villa", "Other"]}
		}`), ModeCreate)

		reasons := fieldReasons(t, err)
		assert.Equal(t, ReasonOtherNeedsDetails, reasons["propertyVision.assetTypes"])
	})
}

func TestApplyPayloadNumericCoercion(t *testing.T) {
	lead := &models.Lead{}
	err := ApplyPayload(lead, []byte(`{
		"identity": {"fullName": "A", "email": "a@example.com", "phone": "+911234567890"},
		"propertyVision": {"farmlandSizeAcres": "2.5", "priorPurchaseCount": "3"}
	}`), ModeCreate)
	require.NoError(t, err)

	assert.Equal(t, 2.5, lead.PropertyVision.FarmlandSizeAcres)
	assert.Equal(t, 3, lead.PropertyVision.PriorPurchaseCount)
}

func TestApplyPayloadRejectsBadNumbers(t *testing.T) {
	lead := &models.Lead{}
	err := ApplyPayload(lead, []byte(`{
		"identity": {"fullName": "A", "email": "a@example.com", "phone": "+911234567890"},
		"propertyVision": {"farmlandSizeAcres": "lots", "priorPurchaseCount": -1}
	}`), ModeCreate)

	reasons := fieldReasons(t, err)
	assert.Equal(t, ReasonNotANumber, reasons["propertyVision.farmlandSizeAcres"])
	assert.Equal(t, ReasonNegativeValue, reasons["propertyVision.priorPurchaseCount"])
}

func TestApplyPayloadUpdateMergesFieldWise(t *testing.T) {
	lead := &models.Lead{}
	require.NoError(t, ApplyPayload(lead, []byte(`{
		"identity": {"fullName": "A", "email": "a@example.com", "phone": "+911234567890"},
		"demographics": {"ageGroup": "35-44", "householdSize": "3-4"}
	}`), ModeCreate))

	// Patch one field of the section; its sibling must survive.
	err := ApplyPayload(lead, []byte(`{"demographics": {"ageGroup": "45-54"}}`), ModeUpdate)
	require.NoError(t, err)

	assert.Equal(t, "45-54", lead.Demographics.AgeGroup)
	assert.Equal(t, "3-4", lead.Demographics.HouseholdSize)
	assert.Equal(t, "A", lead.Identity.FullName)
}

func TestApplyPayloadUpdateNestedMerge(t *testing.T) {
	lead := &models.Lead{}
	require.NoError(t, ApplyPayload(lead, []byte(`{
		"identity": {"fullName": "A", "email": "a@example.com", "phone": "+911234567890"},
		"locationPreferences": {"currentLocation": {"city": "Bengaluru", "state": "Karnataka"}}
	}`), ModeCreate))

	err := ApplyPayload(lead, []byte(`{
		"locationPreferences": {"currentLocation": {"city": "Mysuru"}}
	}`), ModeUpdate)
	require.NoError(t, err)

	loc := lead.LocationPreferences.CurrentLocation
	assert.Equal(t, "Mysuru", loc.City)
	assert.Equal(t, "Karnataka", loc.State)
	assert.Equal(t, "India", loc.Country)
}

func TestApplyPayloadUpdateListsReplaceWholesale(t *testing.T) {
	lead := &models.Lead{}
	require.NoError(t, ApplyPayload(lead, []byte(`{
		"identity": {"fullName": "A", "email": "a@example.com", "phone": "+911234567890"},
		"propertyVision": {"purposes": ["Investment", "Second Home"]}
	}`), ModeCreate))

	err := ApplyPayload(lead, []byte(`{"propertyVision": {"purposes": ["Retirement Home"]}}`), ModeUpdate)
	require.NoError(t, err)

	assert.Equal(t, []string{"Retirement Home"}, lead.PropertyVision.Purposes)
}

func TestApplyPayloadUpdateSkipsIdentityRequirement(t *testing.T) {
	lead := &models.Lead{}
	require.NoError(t, ApplyPayload(lead, minimalIntake(), ModeCreate))

	// An update that never touches identity must not demand the trio.
	err := ApplyPayload(lead, []byte(`{"unitPreferences": {"furnishingLevel": "Semi-furnished"}}`), ModeUpdate)
	require.NoError(t, err)
	assert.Equal(t, "Semi-furnished", lead.UnitPreferences.FurnishingLevel)
	assert.Equal(t, "+919876543210", lead.Identity.Phone)
}

func TestApplyPayloadUpdateRejectsEmptyIdentity(t *testing.T) {
	t.Run("empty phone", func(t *testing.T) {
		lead := &models.Lead{}
		require.NoError(t, ApplyPayload(lead, minimalIntake(), ModeCreate))

		err := ApplyPayload(lead, []byte(`{"identity": {"phone": ""}}`), ModeUpdate)
		reasons := fieldReasons(t, err)
		assert.Equal(t, ReasonRequired, reasons["identity.phone"])

		// The stored phone survives the rejected patch.
		assert.Equal(t, "+919876543210", lead.Identity.Phone)
	})

	t.Run("blank full name", func(t *testing.T) {
		lead := &models.Lead{}
		require.NoError(t, ApplyPayload(lead, minimalIntake(), ModeCreate))

		err := ApplyPayload(lead, []byte(`{"identity": {"fullName": "   "}}`), ModeUpdate)
		reasons := fieldReasons(t, err)
		assert.Equal(t, ReasonRequired, reasons["identity.fullName"])
		assert.Equal(t, "Asha Rao", lead.Identity.FullName)
	})

	t.Run("absent identity still fine", func(t *testing.T) {
		lead := &models.Lead{}
		require.NoError(t, ApplyPayload(lead, minimalIntake(), ModeCreate))

		err := ApplyPayload(lead, []byte(`{"demographics": {"ageGroup": "35-44"}}`), ModeUpdate)
		require.NoError(t, err)
	})
}

func TestApplyPayloadWrongJSONTypes(t *testing.T) {
	t.Run("ruled text field", func(t *testing.T) {
		lead := &models.Lead{}
		err := ApplyPayload(lead, []byte(`{
			"identity": {"fullName": 42, "email": "a@example.com", "phone": "+911234567890"}
		}`), ModeCreate)

		reasons := fieldReasons(t, err)
		assert.Equal(t, ReasonInvalidType, reasons["identity.fullName"])
	})

	t.Run("free text field", func(t *testing.T) {
		lead := &models.Lead{}
		err := ApplyPayload(lead, []byte(`{
			"identity": {"fullName": "A", "email": "a@example.com", "phone": "+911234567890"},
			"demographics": {"notes": 123}
		}`), ModeCreate)

		reasons := fieldReasons(t, err)
		assert.Equal(t, ReasonInvalidType, reasons["demographics.notes"])
	})

	t.Run("numeric phone", func(t *testing.T) {
		lead := &models.Lead{}
		err := ApplyPayload(lead, []byte(`{
			"identity": {"fullName": "A", "email": "a@example.com", "phone": 911234567890}
		}`), ModeCreate)

		reasons := fieldReasons(t, err)
		assert.Equal(t, ReasonInvalidType, reasons["identity.phone"])
	})
}

func TestApplyPayloadDreamHomeNotes(t *testing.T) {
	lead := &models.Lead{}
	require.NoError(t, ApplyPayload(lead, minimalIntake(), ModeCreate))

	err := ApplyPayload(lead, []byte(`{"dreamHomeNotes": "A quiet farmhouse near water"}`), ModeUpdate)
	require.NoError(t, err)
	assert.Equal(t, "A quiet farmhouse near water", lead.DreamHomeNotes)
}

func TestApplyPayloadRejectsNonObjectBody(t *testing.T) {
	lead := &models.Lead{}
	err := ApplyPayload(lead, []byte(`[1,2,3]`), ModeCreate)
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeBadRequest, domain.GetErrorCode(err))
}

func TestOptionSetsAllResolvable(t *testing.T) {
	for section, rules := range sectionRules {
		for _, rule := range rules {
			if rule.Options == "" {
				continue
			}
			assert.NotEmpty(t, Options(rule.Options),
				"section %s field %s references missing option set %q", section, rule.Field, rule.Options)
		}
	}
}
