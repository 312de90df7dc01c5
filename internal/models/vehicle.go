package models

type Vehicle struct {
	ID                   int      `po:"id,primaryKey,serial" yaml:"-"`
	Name                 string   `po:"name,varchar(100),notNull" yaml:"name"`
	Model                *string  `po:"model,varchar(100)" yaml:"model,omitempty"`
	VehicleClass         *string  `po:"vehicle_class,varchar(100)" yaml:"vehicle_class,omitempty"`
	Manufacturer         *string  `po:"manufacturer,varchar(200)" yaml:"manufacturer,omitempty"`
	CostInCredits        *float64 `po:"cost_in_credits" yaml:"cost_in_credits,omitempty"`
	Length               *float64 `po:"length" yaml:"length,omitempty"`
	Crew                 *string  `po:"crew,varchar(50)" yaml:"crew,omitempty"`
	Passengers           *string  `po:"passengers,varchar(50)" yaml:"passengers,omitempty"`
	MaxAtmospheringSpeed *string  `po:"max_atmosphering_speed,varchar(50)" yaml:"max_atmosphering_speed,omitempty"`
	CargoCapacity        *float64 `po:"cargo_capacity" yaml:"cargo_capacity,omitempty"`
	Consumables          *string  `po:"consumables,varchar(50)" yaml:"consumables,omitempty"`
}

func (Vehicle) TableName() string { return "vehicle" }

// Serialize returns every column; unset attributes are nil.
func (v Vehicle) Serialize() map[string]any {
	return map[string]any{
		"id":                     v.ID,
		"name":                   v.Name,
		"model":                  deref(v.Model),
		"vehicle_class":          deref(v.VehicleClass),
		"manufacturer":           deref(v.Manufacturer),
		"cost_in_credits":        deref(v.CostInCredits),
		"length":                 deref(v.Length),
		"crew":                   deref(v.Crew),
		"passengers":             deref(v.Passengers),
		"max_atmosphering_speed": deref(v.MaxAtmospheringSpeed),
		"cargo_capacity":         deref(v.CargoCapacity),
		"consumables":            deref(v.Consumables),
	}
}
