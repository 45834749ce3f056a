package leads

// OptionOther is the escape hatch on every enumerated intake field. When a
// submission picks it, the paired details field must carry free text.
const OptionOther = "Other"

// Option sets for the intake questionnaire. One set per enumerated field;
// the validation schema in validate.go references these by key.
var optionSets = map[string][]string{
	"residencyStatus": {
		"Resident Indian", "NRI", "OCI", "Foreign National", OptionOther,
	},
	"discoverySource": {
		"Google Search", "Social Media", "Referral", "Walk-in",
		"Property Portal", "Event", OptionOther,
	},
	"ageGroup": {
		"Under 25", "25-34", "35-44", "45-54", "55-64", "65+",
	},
	"profession": {
		"Salaried", "Business Owner", "Self-employed Professional",
		"Farmer", "Retired", "Homemaker", OptionOther,
	},
	"householdSize": {
		"1", "2", "3-4", "5-6", "7+",
	},
	"annualIncomeRange": {
		"Under 10L", "10L-25L", "25L-50L", "50L-1Cr", "1Cr+",
		"Prefer not to say",
	},
	"purpose": {
		"Primary Residence", "Second Home", "Retirement Home",
		"Investment", "Farmhouse Getaway", OptionOther,
	},
	"buyingMotivation": {
		"Wealth Creation", "Rental Income", "Lifestyle Upgrade",
		"Family Legacy", "Relocation", "Closer to Nature", OptionOther,
	},
	"shortTermRental": {
		"Yes", "No", "Undecided",
	},
	"assetType": {
		"Apartment", "Villa", "Plot", "Farmland", "Farmland + Villa",
		"Row House", "Penthouse", OptionOther,
	},
	"waterSource": {
		"Borewell", "River Frontage", "Lake Proximity", "Municipal Supply",
		"Rainwater Harvested", OptionOther,
	},
	"unitConfiguration": {
		"Studio", "1 BHK", "2 BHK", "3 BHK", "4 BHK", "4+ BHK", OptionOther,
	},
	"farmlandSizeBucket": {
		"Under 0.5 acre", "0.5-1 acre", "1-2 acres", "2-5 acres", "5+ acres",
	},
	"farmlandVillaConfig": {
		"Farmland Only", "Farmland + 1 BHK Villa", "Farmland + 2 BHK Villa",
		"Farmland + 3 BHK Villa", OptionOther,
	},
	"journeyStage": {
		"Just Exploring", "Actively Researching", "Comparing Options",
		"Ready to Buy", "Already Booked Elsewhere", OptionOther,
	},
	"explorationDuration": {
		"Just Started", "1-3 months", "3-6 months", "6-12 months",
		"Over a year",
	},
	"purchaseTimeline": {
		"Immediate", "Within 3 months", "3-6 months", "6-12 months",
		"Over a year", "Undecided",
	},
	"budgetRange": {
		"Under 25L", "25L-50L", "50L-1Cr", "1Cr-2Cr", "2Cr-5Cr", "5Cr+",
	},
	"ownershipStructure": {
		"Individual", "Joint", "Company", "Trust", "HUF", OptionOther,
	},
	"possessionTimeline": {
		"Ready to Move", "Within 1 year", "1-2 years", "2-3 years",
		"No Preference", OptionOther,
	},
	"managementModel": {
		"Self-managed", "Fully Managed", "Managed Farmland",
		"Rental Pool", OptionOther,
	},
	"fundingType": {
		"Self-funded", "Home Loan", "Loan Against Property",
		"NRI Remittance", OptionOther,
	},
	"buyingRegion": {
		"North India", "South India", "East India", "West India",
		"Central India", "International",
	},
	"climateRisk": {
		"Flooding", "Drought", "Extreme Heat", "Landslides",
		"Coastal Erosion", "Air Pollution",
	},
	"climatePreference": {
		"Cool Hill Climate", "Moderate", "Warm and Dry", "Coastal Humid",
		"No Preference",
	},
	"locationPriority": {
		"Airport Connectivity", "Healthcare Access", "Schools",
		"Investment Corridor", "Scenic Beauty", "Community", OptionOther,
	},
	"expansionRadius": {
		"Within City", "Up to 50 km", "50-100 km", "100-200 km", "Anywhere",
	},
	"areaType": {
		"City Center", "Suburb", "Gated Township", "Countryside",
		"Hill Station", "Coastal", OptionOther,
	},
	"energyPreference": {
		"Grid Only", "Solar Preferred", "Fully Off-grid", "No Preference",
	},
	"natureFeature": {
		"Fruit Orchard", "Native Forest", "Water Body", "Organic Farm",
		"Bird Habitat", OptionOther,
	},
	"terrainPreference": {
		"Flat", "Gentle Slope", "Hillside", "Riverside", "No Preference",
		OptionOther,
	},
	"viewPreference": {
		"Hill View", "Lake View", "Forest View", "Farm View", "City Skyline",
		"Garden View",
	},
	"communityFormat": {
		"Standalone", "Boutique Community", "Large Township",
		"Co-living", OptionOther,
	},
	"gatedPreference": {
		"Gated", "Non-gated", "No Preference",
	},
	"communityFriendlyFor": {
		"Children", "Seniors", "Pets", "Remote Workers", "Multi-generational",
	},
	"outdoorAmenity": {
		"Swimming Pool", "Clubhouse", "Walking Trails", "Sports Courts",
		"Amphitheatre", "Campfire Area", OptionOther,
	},
	"vastuDirection": {
		"North", "South", "East", "West", "North-East", "North-West",
		"South-East", "South-West",
	},
	"furnishingLevel": {
		"Unfurnished", "Semi-furnished", "Fully Furnished",
	},
	"interiorStyle": {
		"Contemporary", "Traditional", "Minimalist", "Rustic", "Industrial",
		OptionOther,
	},
	"smartHomeFeature": {
		"Smart Locks", "Automated Lighting", "Security Cameras",
		"Smart Irrigation", "Energy Monitoring",
	},
	"mustHaveFeature": {
		"Private Garden", "Home Office", "Servant Quarters", "EV Charging",
		"Rainwater Harvesting", "Solar Panels", OptionOther,
	},
}

// Options returns the option set registered under key, or nil.
func Options(key string) []string {
	return optionSets[key]
}

func optionAllowed(key, value string) bool {
	for _, v := range optionSets[key] {
		if v == value {
			return true
		}
	}
	return false
}
