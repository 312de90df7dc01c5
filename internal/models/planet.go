package models

type Planet struct {
	ID             int      `po:"id,primaryKey,serial" yaml:"-"`
	Name           string   `po:"name,varchar(100),notNull" yaml:"name"`
	Climate        *string  `po:"climate,varchar(100)" yaml:"climate,omitempty"`
	Terrain        *string  `po:"terrain,varchar(100)" yaml:"terrain,omitempty"`
	Population     *float64 `po:"population" yaml:"population,omitempty"`
	Diameter       *float64 `po:"diameter" yaml:"diameter,omitempty"`
	RotationPeriod *float64 `po:"rotation_period" yaml:"rotation_period,omitempty"`
	OrbitalPeriod  *float64 `po:"orbital_period" yaml:"orbital_period,omitempty"`
	Gravity        *string  `po:"gravity,varchar(20)" yaml:"gravity,omitempty"`
	SurfaceWater   *float64 `po:"surface_water" yaml:"surface_water,omitempty"`
}

func (Planet) TableName() string { return "planet" }

// Serialize returns every column; unset attributes are nil.
func (p Planet) Serialize() map[string]any {
	return map[string]any{
		"id":              p.ID,
		"name":            p.Name,
		"climate":         deref(p.Climate),
		"terrain":         deref(p.Terrain),
		"population":      deref(p.Population),
		"diameter":        deref(p.Diameter),
		"rotation_period": deref(p.RotationPeriod),
		"orbital_period":  deref(p.OrbitalPeriod),
		"gravity":         deref(p.Gravity),
		"surface_water":   deref(p.SurfaceWater),
	}
}
