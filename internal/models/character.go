package models

// Character is a person from the franchise catalogue.
type Character struct {
	ID        int      `po:"id,primaryKey,serial" yaml:"-"`
	Name      string   `po:"name,varchar(100),notNull" yaml:"name"`
	Height    *float64 `po:"height" yaml:"height,omitempty"`
	Mass      *float64 `po:"mass" yaml:"mass,omitempty"`
	HairColor *string  `po:"hair_color,varchar(50)" yaml:"hair_color,omitempty"`
	SkinColor *string  `po:"skin_color,varchar(50)" yaml:"skin_color,omitempty"`
	EyeColor  *string  `po:"eye_color,varchar(50)" yaml:"eye_color,omitempty"`
	BirthYear *string  `po:"birth_year,varchar(20)" yaml:"birth_year,omitempty"`
	Gender    *string  `po:"gender,varchar(20)" yaml:"gender,omitempty"`
	Homeworld *string  `po:"homeworld,varchar(200)" yaml:"homeworld,omitempty"` // free text, not a reference
}

func (Character) TableName() string { return "character" }

// Serialize returns every column; unset attributes are nil.
func (c Character) Serialize() map[string]any {
	return map[string]any{
		"id":         c.ID,
		"name":       c.Name,
		"height":     deref(c.Height),
		"mass":       deref(c.Mass),
		"hair_color": deref(c.HairColor),
		"skin_color": deref(c.SkinColor),
		"eye_color":  deref(c.EyeColor),
		"birth_year": deref(c.BirthYear),
		"gender":     deref(c.Gender),
		"homeworld":  deref(c.Homeworld),
	}
}
