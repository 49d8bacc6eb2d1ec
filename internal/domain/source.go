package domain

import "time"

// SourceConfidence is the administrator-assigned trust weight for an
// originating data source. The confidence scorer reads it on every decision.
type SourceConfidence struct {
	SourceSystem string
	Score        float64
	Description  string
	UpdatedAt    time.Time
}

// Core source systems are seeded at startup and can be re-scored but never
// deleted.
const (
	SourceWebIntake = "web_intake"
	SourceAtlasUI   = "atlas_ui"
	SourceAirtable  = "airtable"
	SourceClinicHQ  = "clinichq"
)

var coreSources = map[string]struct{}{
	SourceWebIntake: {},
	SourceAtlasUI:   {},
	SourceAirtable:  {},
	SourceClinicHQ:  {},
}

// IsCoreSource reports whether the source system is one of the protected
// seeded sources.
func IsCoreSource(name string) bool {
	_, ok := coreSources[name]
	return ok
}

// CoreSources returns the protected source system names.
func CoreSources() []string {
	return []string{SourceWebIntake, SourceAtlasUI, SourceAirtable, SourceClinicHQ}
}
