package database

import "whvmatch/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.EmployerProfile{},
		&models.MakerProfile{},
		&models.JobPost{},
		&models.Like{},
		&models.Notification{},
		&models.NotificationSetting{},
	}
}
