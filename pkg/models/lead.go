package models

import "time"

// Lead statuses. The pipeline is intentionally permissive: any status may
// move to any other status, only the domain itself is closed.
const (
	LeadStatusNew         = "New"
	LeadStatusContacted   = "Contacted"
	LeadStatusQualified   = "Qualified"
	LeadStatusShortlisted = "Shortlisted"
	LeadStatusSiteVisit   = "Site Visit"
	LeadStatusNegotiation = "Negotiation"
	LeadStatusBooked      = "Booked"
	LeadStatusLost        = "Lost"
	LeadStatusConverted   = "Converted"
)

// LeadStatuses lists every valid lead status.
var LeadStatuses = []string{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusShortlisted,
	LeadStatusSiteVisit,
	LeadStatusNegotiation,
	LeadStatusBooked,
	LeadStatusLost,
	LeadStatusConverted,
}

// IsValidLeadStatus reports whether s is one of the nine lead statuses.
func IsValidLeadStatus(s string) bool {
	for _, v := range LeadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// LeadIdentity is the only mandatory section of a lead. Phone is globally
// unique and mirrored into its own indexed column by the service.
type LeadIdentity struct {
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	ResidencyStatus  string `json:"residencyStatus"`
	ResidencyDetails string `json:"residencyDetails"`
	DiscoverySource  string `json:"discoverySource"`
	DiscoveryDetails string `json:"discoveryDetails"`
}

// LeadDemographics captures who the buyer is.
type LeadDemographics struct {
	AgeGroup          string   `json:"ageGroup"`
	Professions       []string `json:"professions"`
	HouseholdSize     string   `json:"householdSize"`
	AnnualIncomeRange string   `json:"annualIncomeRange"`
	Notes             string   `json:"notes"`
}

// LeadPropertyVision captures what the buyer wants to buy and why.
type LeadPropertyVision struct {
	PriorPurchaseCount        int      `json:"priorPurchaseCount"`
	Purposes                  []string `json:"purposes"`
	PurposesDetails           string   `json:"purposesDetails"`
	BuyingMotivations         []string `json:"buyingMotivations"`
	BuyingMotivationsDetails  string   `json:"buyingMotivationsDetails"`
	ShortTermRental           string   `json:"shortTermRental"`
	AssetTypes                []string `json:"assetTypes"`
	AssetTypesDetails         string   `json:"assetTypesDetails"`
	WaterSource               string   `json:"waterSource"`
	WaterSourceDetails        string   `json:"waterSourceDetails"`
	UnitConfigurations        []string `json:"unitConfigurations"`
	UnitConfigurationsDetails string   `json:"unitConfigurationsDetails"`
	FarmlandSizeBucket        string   `json:"farmlandSizeBucket"`
	FarmlandSizeAcres         float64  `json:"farmlandSizeAcres"`
	FarmlandVillaConfig       string   `json:"farmlandVillaConfig"`
	JourneyStage              string   `json:"journeyStage"`
	JourneyStageDetails       string   `json:"journeyStageDetails"`
	ExplorationDuration       string   `json:"explorationDuration"`
	PurchaseTimeline          string   `json:"purchaseTimeline"`
	BudgetRange               string   `json:"budgetRange"`
	Notes                     string   `json:"notes"`
}

// LeadInvestmentPreferences captures how the buyer wants to hold and fund it.
type LeadInvestmentPreferences struct {
	OwnershipStructure        string `json:"ownershipStructure"`
	OwnershipStructureDetails string `json:"ownershipStructureDetails"`
	PossessionTimeline        string `json:"possessionTimeline"`
	PossessionTimelineDetails string `json:"possessionTimelineDetails"`
	ManagementModel           string `json:"managementModel"`
	ManagementModelDetails    string `json:"managementModelDetails"`
	FundingType               string `json:"fundingType"`
	FundingTypeDetails        string `json:"fundingTypeDetails"`
	Notes                     string `json:"notes"`
}

// CurrentLocation is where the buyer lives today.
type CurrentLocation struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// LeadLocationPreferences captures where the buyer wants to buy.
type LeadLocationPreferences struct {
	CurrentLocation     CurrentLocation `json:"currentLocation"`
	BuyingRegions       []string        `json:"buyingRegions"`
	PreferredCountries  []string        `json:"preferredCountries"`
	PreferredStates     []string        `json:"preferredStates"`
	PreferredCities     []string        `json:"preferredCities"`
	ClimateRisksToAvoid []string        `json:"climateRisksToAvoid"`
	ClimatePreferences  []string        `json:"climatePreferences"`
	LocationPriorities  []string        `json:"locationPriorities"`
	ExpansionRadius     string          `json:"expansionRadius"`
	Notes               string          `json:"notes"`
}

// LeadLifestylePreferences captures the surroundings the buyer wants.
type LeadLifestylePreferences struct {
	AreaType                 string   `json:"areaType"`
	AreaTypeDetails          string   `json:"areaTypeDetails"`
	EnergyPreference         string   `json:"energyPreference"`
	NatureFeatures           []string `json:"natureFeatures"`
	TerrainPreference        string   `json:"terrainPreference"`
	TerrainPreferenceDetails string   `json:"terrainPreferenceDetails"`
	ViewPreferences          []string `json:"viewPreferences"`
	CommunityFormat          string   `json:"communityFormat"`
	CommunityFormatDetails   string   `json:"communityFormatDetails"`
	GatedPreference          string   `json:"gatedPreference"`
	CommunityFriendlyFor     []string `json:"communityFriendlyFor"`
	OutdoorAmenities         []string `json:"outdoorAmenities"`
	Notes                    string   `json:"notes"`
}

// LeadUnitPreferences captures the unit itself.
type LeadUnitPreferences struct {
	VastuDirections         []string `json:"vastuDirections"`
	FurnishingLevel         string   `json:"furnishingLevel"`
	InteriorStyle           string   `json:"interiorStyle"`
	InteriorStyleDetails    string   `json:"interiorStyleDetails"`
	SmartHomeFeatures       []string `json:"smartHomeFeatures"`
	MustHaveFeatures        []string `json:"mustHaveFeatures"`
	MustHaveFeaturesDetails string   `json:"mustHaveFeaturesDetails"`
	Notes                   string   `json:"notes"`
}

// LeadSystem is the back-office block: pipeline status, owning agent and
// derived scores. Stored as plain columns so list filters stay indexed.
type LeadSystem struct {
	LeadStatus      string `json:"leadStatus" gorm:"column:lead_status;size:20;default:'New';index"`
	AssignedAgentID *uint  `json:"assignedAgent" gorm:"column:assigned_agent_id;index"`
	PriorityScore   int    `json:"priorityScore" gorm:"column:priority_score;default:0"`
	InvestmentScore int    `json:"investmentScore" gorm:"column:investment_score;default:0"`
}

// Lead is the aggregate root: one row per prospective buyer, intake
// sections stored as JSON documents, system fields as indexed columns.
type Lead struct {
	ID uint `json:"id" gorm:"primaryKey"`

	Identity              LeadIdentity              `json:"identity" gorm:"serializer:json"`
	Demographics          LeadDemographics          `json:"demographics" gorm:"serializer:json"`
	PropertyVision        LeadPropertyVision        `json:"propertyVision" gorm:"serializer:json"`
	InvestmentPreferences LeadInvestmentPreferences `json:"investmentPreferences" gorm:"serializer:json"`
	LocationPreferences   LeadLocationPreferences   `json:"locationPreferences" gorm:"serializer:json"`
	LifestylePreferences  LeadLifestylePreferences  `json:"lifestylePreferences" gorm:"serializer:json"`
	UnitPreferences       LeadUnitPreferences       `json:"unitPreferences" gorm:"serializer:json"`
	DreamHomeNotes        string                    `json:"dreamHomeNotes"`

	// Denormalized identity fields kept in sync by the lead service so the
	// unique index and list filters work at the storage layer.
	Phone string `json:"-" gorm:"uniqueIndex;size:20"`
	Email string `json:"-" gorm:"index;size:255"`
	Name  string `json:"-" gorm:"index;size:255"`

	System LeadSystem `json:"system" gorm:"embedded"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SyncDenormalized copies the searchable identity fields into their
// dedicated columns. Must be called before every save.
func (l *Lead) SyncDenormalized() {
	l.Phone = l.Identity.Phone
	l.Email = l.Identity.Email
	l.Name = l.Identity.FullName
}

// LeadStatusHistory records every status change for a lead.
type LeadStatusHistory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	LeadID    uint      `json:"leadId" gorm:"index"`
	UserID    uint      `json:"userId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// LeadAssignment records the assignment history of a lead. The active row
// mirrors system.assigned_agent_id on the lead itself.
type LeadAssignment struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	LeadID       uint      `json:"leadId" gorm:"index"`
	AgentID      uint      `json:"agentId" gorm:"index"`
	AssignedByID uint      `json:"assignedById"`
	Type         string    `json:"type" gorm:"size:10"` // "auto" or "manual"
	Reason       string    `json:"reason,omitempty"`
	Active       bool      `json:"active" gorm:"index"`
	AssignedAt   time.Time `json:"assignedAt" gorm:"autoCreateTime"`
}

// LeadNote is a free-form note an agent leaves on a lead.
type LeadNote struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	LeadID    uint      `json:"leadId" gorm:"index"`
	UserID    uint      `json:"userId"`
	Body      string    `json:"body" gorm:"type:text"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
