package models

// All lists every model, in dependency order, for migrations.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Ingredient{},
		&Extra{},
		&Product{},
		&Rating{},
		&Favorite{},
		&Settings{},
		&AdminPreferences{},
	}
}
