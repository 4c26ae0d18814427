// Package tasks turns the agency table and the current date into the ordered
// list of downloads a run performs.
package tasks

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"etenderexport/internal/config"
)

// Plan is the immutable input to Generate. Build one with PlanFromConfig or
// DefaultPlan; both copy their tables so later changes to the source do not
// leak into a plan already handed out.
type Plan struct {
	Agencies    []config.Agency        `validate:"min=1,unique=Code,dive"`
	URLTemplate string                 `validate:"required,contains=AGENCY_UUID,contains=PUB_START,contains=PUB_END"`
	Periods     [2]config.PeriodBounds `validate:"dive"`
	StartYear   int                    `validate:"min=1900,max=9999"`
	FilePrefix  string                 `validate:"required"`
	FileExt     string                 `validate:"required"`
}

// DefaultPlan packages the compiled agency and period tables.
func DefaultPlan() Plan {
	return PlanFromConfig(config.Default().Export)
}

// PlanFromConfig packages the export section of a loaded configuration.
// Only the first two period entries are used; Validate on the config
// guarantees there are exactly two.
func PlanFromConfig(export config.ExportConfig) Plan {
	agencies := make([]config.Agency, len(export.Agencies))
	copy(agencies, export.Agencies)

	var bounds [2]config.PeriodBounds
	copy(bounds[:], export.Periods)

	return Plan{
		Agencies:    agencies,
		URLTemplate: export.URLTemplate,
		Periods:     bounds,
		StartYear:   export.StartYear,
		FilePrefix:  export.FilePrefix,
		FileExt:     export.FileExt,
	}
}

// Validate checks the plan before any task is generated.
func (p Plan) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}
	return nil
}
