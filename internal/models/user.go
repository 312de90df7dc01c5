package models

// User owns favorites. The password is stored as given and never projected.
type User struct {
	ID        int        `po:"id,primaryKey,serial"`
	Email     string     `po:"email,varchar(120),unique,notNull"`
	Password  string     `po:"password,text,notNull"`
	IsActive  bool       `po:"is_active,boolean,notNull,default(true)"`
	Favorites []Favorite `po:"favorites,hasMany,foreignKey(user_id)"`
}

// TableName returns the table name; user is a reserved word and is always
// quoted in generated SQL.
func (User) TableName() string { return "user" }

// Serialize returns the public projection of the user with its loaded
// favorites.
func (u User) Serialize() map[string]any {
	favorites := make([]map[string]any, 0, len(u.Favorites))
	for _, f := range u.Favorites {
		favorites = append(favorites, f.Serialize())
	}
	return map[string]any{
		"id":        u.ID,
		"email":     u.Email,
		"is_active": u.IsActive,
		"favorites": favorites,
	}
}

// UserPatch holds the user fields an update may change. Nil fields are left
// untouched.
type UserPatch struct {
	Email    *string
	Password *string
	IsActive *bool
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Password == nil && p.IsActive == nil
}
