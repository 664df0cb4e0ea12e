package report

// Report status values.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusArchived  = "archived"
)

var statusText = map[string]string{
	StatusDraft:     "Draft",
	StatusSubmitted: "Submitted",
	StatusArchived:  "Archived",
}

// StatusText translates a status value for display. Unknown values pass
// through unchanged.
func StatusText(status string) string {
	if t, ok := statusText[status]; ok {
		return t
	}
	return status
}

var responsibilityText = map[string]string{
	"partyA_full":       "Party A Full Responsibility",
	"partyB_full":       "Party B Full Responsibility",
	"equal":             "Equal Responsibility",
	"partyA_main":       "Party A Main Responsibility",
	"partyB_main":       "Party B Main Responsibility",
	"no_responsibility": "No Responsibility Determined",
}

// ResponsibilityText translates a responsibility value for display.
// Unknown values map to "Not determined".
func ResponsibilityText(responsibility string) string {
	if t, ok := responsibilityText[responsibility]; ok {
		return t
	}
	return "Not determined"
}

var photoTypeText = map[string]string{
	"scene":          "Scene Photo",
	"front":          "Front View",
	"frontView":      "Front View",
	"side":           "Side View",
	"rear":           "Rear View",
	"rearView":       "Rear View",
	"detail":         "Detail",
	"damageDetail":   "Damage Detail",
	"scenePanorama":  "Scene Panorama",
	"driverLicense":  "Driver License",
	"vehicleLicense": "Vehicle License",
	"other":          "Other",
}

// PhotoTypeText translates a photo type tag for captions. Unknown tags
// render as "Other"; stored rows keep their original tag.
func PhotoTypeText(photoType string) string {
	if t, ok := photoTypeText[photoType]; ok {
		return t
	}
	return "Other"
}
