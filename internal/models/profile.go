package models

import "time"

// VisaType is the subclass of a working holiday visa.
type VisaType string

const (
	VisaType417 VisaType = "417"
	VisaType462 VisaType = "462"
)

// VisaStage tracks which year of the working holiday program a maker is on.
type VisaStage string

const (
	VisaStageFirst  VisaStage = "first"
	VisaStageSecond VisaStage = "second"
	VisaStageThird  VisaStage = "third"
)

// EmployerProfile holds the business details of an employer account.
type EmployerProfile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User         *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BusinessName string    `gorm:"size:200;not null" json:"business_name"`
	Industry     string    `gorm:"size:80;index" json:"industry"`
	State        string    `gorm:"size:8;index" json:"state"`
	Suburb       string    `gorm:"size:120" json:"suburb"`
	Postcode     string    `gorm:"size:8" json:"postcode"`
	About        string    `gorm:"type:text" json:"about"`
	Website      string    `gorm:"size:255" json:"website"`
	ContactName  string    `gorm:"size:120" json:"contact_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MakerProfile holds the visa and preference details of a WHV job seeker.
type MakerProfile struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	User              *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	GivenName         string     `gorm:"size:120;not null" json:"given_name"`
	FamilyName        string     `gorm:"size:120" json:"family_name"`
	Nationality       string     `gorm:"size:80" json:"nationality"`
	VisaType          VisaType   `gorm:"type:varchar(8);index" json:"visa_type"`
	VisaStage         VisaStage  `gorm:"type:varchar(8);index" json:"visa_stage"`
	VisaExpiry        *time.Time `json:"visa_expiry,omitempty"`
	PreferredIndustry string     `gorm:"size:80;index" json:"preferred_industry"`
	PreferredState    string     `gorm:"size:8;index" json:"preferred_state"`
	Bio               string     `gorm:"type:text" json:"bio"`
	AvailableFrom     *time.Time `json:"available_from,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// FullName joins the maker's given and family names.
func (p *MakerProfile) FullName() string {
	if p.FamilyName == "" {
		return p.GivenName
	}
	return p.GivenName + " " + p.FamilyName
}

// PublicProfile is the read model returned for another user's profile.
type PublicProfile struct {
	UserID   uint             `json:"user_id"`
	Role     Role             `json:"role"`
	Name     string           `json:"name"`
	Employer *EmployerProfile `json:"employer,omitempty"`
	Maker    *MakerProfile    `json:"maker,omitempty"`
}
