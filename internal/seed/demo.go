package seed

import (
	"errors"
	"fmt"

	"whvmatch/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoAccount is a fixed login for local development.
type DemoAccount struct {
	Email       string
	Role        models.Role
	DisplayName string
}

// DemoAccounts are created by Demo.
var DemoAccounts = []DemoAccount{
	{Email: "employer@whvmatch.dev", Role: models.RoleEmployer, DisplayName: "Sunny Coast Farms"},
	{Email: "maker@whvmatch.dev", Role: models.RoleWHV, DisplayName: "Mia Rossi"},
}

// Demo ensures the demo accounts, their profiles and one open job exist.
// Running it again changes nothing.
func Demo(db *gorm.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, acct := range DemoAccounts {
			user := models.User{
				Email:       acct.Email,
				Password:    string(hash),
				Role:        acct.Role,
				DisplayName: acct.DisplayName,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
				return fmt.Errorf("create demo user %s: %w", acct.Email, err)
			}
			if err := tx.Where("email = ?", acct.Email).First(&user).Error; err != nil {
				return err
			}

			switch acct.Role {
			case models.RoleEmployer:
				if err := ensureDemoEmployer(tx, &user); err != nil {
					return err
				}
			case models.RoleWHV:
				profile := models.MakerProfile{
					UserID:            user.ID,
					GivenName:         "Mia",
					FamilyName:        "Rossi",
					Nationality:       "Italian",
					VisaType:          models.VisaType417,
					VisaStage:         models.VisaStageFirst,
					PreferredIndustry: "agriculture",
					PreferredState:    "QLD",
				}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&profile).Error; err != nil {
					return fmt.Errorf("create demo maker profile: %w", err)
				}
			}
		}
		return nil
	})
}

func ensureDemoEmployer(tx *gorm.DB, user *models.User) error {
	profile := models.EmployerProfile{
		UserID:       user.ID,
		BusinessName: user.DisplayName,
		Industry:     "agriculture",
		State:        "QLD",
		Suburb:       "Bundaberg",
		Postcode:     "4670",
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&profile).Error; err != nil {
		return fmt.Errorf("create demo employer profile: %w", err)
	}

	var job models.JobPost
	err := tx.Where("employer_id = ?", user.ID).First(&job).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	job = models.JobPost{
		EmployerID: user.ID,
		Title:      "Strawberry Picker",
		Industry:   "agriculture",
		State:      "QLD",
		Suburb:     "Bundaberg",
		PayMin:     28,
		PayMax:     32,
		Status:     models.JobStatusOpen,
	}
	return tx.Create(&job).Error
}
