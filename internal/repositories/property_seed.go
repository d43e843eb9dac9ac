package repositories

import (
	"context"

	"github.com/lib/pq"

	"stayflo/internal/models/db_models"
	"stayflo/internal/planner"
)

// sanAntonioAliases are the neighborhood names guests write in notes,
// keyed by the area they belong to.
var sanAntonioAliases = map[string][]string{
	"downtown":      {"downtown", "river walk", "pearl", "southtown", "king william", "alamo heights"},
	"rim":           {"the rim", "la cantera"},
	"stone_oak":     {"stone oak"},
	"boerne":        {"boerne"},
	"new_braunfels": {"new braunfels"},
	"schertz":       {"schertz"},
}

func sanAntonioAreas() []db_models.PropertyArea {
	out := make([]db_models.PropertyArea, 0, len(planner.SanAntonioAreas))
	for i, a := range planner.SanAntonioAreas {
		out = append(out, db_models.PropertyArea{
			Key:          a.Key,
			Position:     i,
			Lat:          a.Lat,
			Lng:          a.Lng,
			RadiusMeters: a.RadiusMeters,
			Aliases:      pq.StringArray(append([]string(nil), sanAntonioAliases[a.Key]...)),
		})
	}
	return out
}

// DefaultProperties is the built-in catalog.
func DefaultProperties() []db_models.Property {
	brand := func(p db_models.Property) db_models.Property {
		p.City = "San Antonio"
		p.Region = "TX"
		p.Timezone = "America/Chicago"
		p.LogoURL = "/brand/foc-logo.png"
		p.Theme = "dark"
		p.AccentHex = "#5A2D82"
		p.Areas = sanAntonioAreas()
		return p
	}
	return []db_models.Property{
		brand(db_models.Property{Slug: "lamar", Name: "Lamar Street", DisplayName: "Fields of Comfort Stays • Lamar"}),
		brand(db_models.Property{Slug: "gabriel", Name: "Gabriel Street", DisplayName: "Fields of Comfort Stays • Gabriel"}),
	}
}

// SeedDefaultProperties inserts the built-in catalog when a slug is missing.
// Existing rows are left alone so edits in the database survive restarts.
func SeedDefaultProperties(ctx context.Context, repo PropertyRepository) error {
	for _, p := range DefaultProperties() {
		if _, err := repo.GetBySlug(ctx, p.Slug); err == nil {
			continue
		}
		if err := repo.Upsert(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}
