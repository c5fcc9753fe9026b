// internal/domain/models/categories.go
package models

// Canonical complaint category identifiers.
//
// These values are stored in the database in the Complaint.Category field and
// are the same stable keys the web client sends. Human-facing labels live in
// CategoryLabels.
const (
	CategoryAcademics      = "academics"
	CategoryInfrastructure = "infrastructure"
	CategoryFaculty        = "faculty"
	CategoryAdministration = "administration"
	CategoryHostel         = "hostel"
	CategoryCanteen        = "canteen"
	CategoryLibrary        = "library"
	CategoryTransportation = "transportation"
	CategoryLabs           = "labs"
	CategoryOther          = "other"
)

// Categories is the full, closed set of allowed complaint categories.
//
// This slice should be treated as the single source of truth for validation
// and schema enums. Any new category must be added here to be considered valid.
var Categories = []string{
	CategoryAcademics,
	CategoryInfrastructure,
	CategoryFaculty,
	CategoryAdministration,
	CategoryHostel,
	CategoryCanteen,
	CategoryLibrary,
	CategoryTransportation,
	CategoryLabs,
	CategoryOther,
}

// CategoryLabels maps category identifiers to display labels.
var CategoryLabels = map[string]string{
	CategoryAcademics:      "Academics",
	CategoryInfrastructure: "Infrastructure",
	CategoryFaculty:        "Faculty",
	CategoryAdministration: "Administration",
	CategoryHostel:         "Hostel",
	CategoryCanteen:        "Canteen",
	CategoryLibrary:        "Library",
	CategoryTransportation: "Transportation",
	CategoryLabs:           "Labs & Equipment",
	CategoryOther:          "Other",
}

// IsValidCategory reports whether c is one of the canonical categories.
func IsValidCategory(c string) bool {
	_, ok := CategoryLabels[c]
	return ok
}
