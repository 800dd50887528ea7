package models

// All is the table set managed by migrations, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&AuthToken{},
		&Project{},
		&ProjectMember{},
		&Task{},
		&Comment{},
	}
}
