package models

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Driver{},
		&Vehicle{},
		&Stop{},
		&Route{},
		&RoutePoint{},
		&RoutePair{},
		&Schedule{},
		&ScheduleTemplate{},
		&ScheduleTemplatePoint{},
	}
}
