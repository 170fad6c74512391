package submissions

import (
	"Backend-NetZero/src/models"
	"fmt"
)

// ClampPoints bounds a reviewer rating to [0,1].
func ClampPoints(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// MissingSections returns "category.section" keys that block a submit:
// absent sections, empty required fields, missing mandated evidence.
func MissingSections(sub *models.Submission) []string {
	var missing []string
	for _, schema := range models.Schemas() {
		stored := sub.Category(schema.Key)
		for _, def := range schema.Sections {
			sec, ok := stored[def.Key]
			if !ok {
				missing = append(missing, fmt.Sprintf("%s.%s", schema.Key, def.Key))
				continue
			}
			if err := def.Validate(sec.Value, sec.Certificate != ""); err != nil {
				missing = append(missing, fmt.Sprintf("%s.%s", schema.Key, def.Key))
			}
		}
	}
	return missing
}

// ComputeOverallScore averages section points per ESG category over the
// schema's section set (unrated sections count as 0, so partial review
// never inflates the aggregate). Total is the mean of the three categories.
func ComputeOverallScore(sub *models.Submission) models.OverallScore {
	env := categoryScore(sub, models.CategoryEnvironment)
	soc := categoryScore(sub, models.CategorySocial)
	gov := categoryScore(sub, models.CategoryGovernance)

	return models.OverallScore{
		Environment: env,
		Social:      soc,
		Governance:  gov,
		Total:       (env + soc + gov) / 3,
	}
}

func categoryScore(sub *models.Submission, category string) float64 {
	schema, ok := models.SchemaFor(category)
	if !ok || len(schema.Sections) == 0 {
		return 0
	}

	stored := sub.Category(category)
	var sum float64
	for _, def := range schema.Sections {
		sum += stored[def.Key].Points
	}
	return sum / float64(len(schema.Sections))
}
