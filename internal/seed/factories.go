// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"whvmatch/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "Password123!"

var (
	industries    = []string{"agriculture", "hospitality", "construction", "tourism", "fishing", "mining", "aged-care"}
	states        = []string{"ACT", "NSW", "NT", "QLD", "SA", "TAS", "VIC", "WA"}
	jobTitles     = []string{"Fruit Picker", "Farm Hand", "Barista", "Housekeeper", "Labourer", "Deckhand", "Kitchen Hand", "Tour Guide", "Packer"}
	nationalities = []string{"German", "French", "British", "Irish", "Italian", "Korean", "Japanese", "Taiwanese", "Canadian", "Dutch"}
	visaTypes     = []models.VisaType{models.VisaType417, models.VisaType462}
	visaStages    = []models.VisaStage{models.VisaStageFirst, models.VisaStageSecond, models.VisaStageThird}
)

// SeedOptions tunes how a Factory builds entities.
type SeedOptions struct {
	// DryRun assigns synthetic IDs instead of writing to the database.
	DryRun bool
	// SkipBcrypt stores a cheap hash for faster local seeding.
	SkipBcrypt bool
	// MaxDays spreads created_at timestamps over the last MaxDays days.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	rnd  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
	hash   string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rnd: rand.New(rand.NewSource(time.Now().UnixNano())), nextID: 1000}
}

func pick[T any](r *rand.Rand, items []T) T {
	return items[r.Intn(len(items))]
}

func (f *Factory) passwordHash() (string, error) {
	if f.hash != "" {
		return f.hash, nil
	}
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return "", err
	}
	f.hash = string(hashed)
	return f.hash, nil
}

func (f *Factory) createdAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rnd.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rnd.Intn(24))*time.Hour +
		time.Duration(f.rnd.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

func (f *Factory) persist(label string, v any, id *uint) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		log.Printf("[dry-run] %s: id=%d", label, *id)
		return nil
	}
	return f.db.Create(v).Error
}

// CreateUser constructs and persists a user with the given role.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(role models.Role, overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:       strings.ToLower(fmt.Sprintf("%s.%d@%s", gofakeit.Username(), gofakeit.Number(100, 9999), gofakeit.DomainName())),
		Password:    hash,
		Role:        role,
		DisplayName: gofakeit.Name(),
		CreatedAt:   f.createdAt(),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.persist("CreateUser", user, &user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateEmployer persists an employer account and its business profile.
func (f *Factory) CreateEmployer(overrides ...func(*models.EmployerProfile)) (*models.User, *models.EmployerProfile, error) {
	business := gofakeit.Company()
	user, err := f.CreateUser(models.RoleEmployer, func(u *models.User) { u.DisplayName = business })
	if err != nil {
		return nil, nil, err
	}
	profile := &models.EmployerProfile{
		UserID:       user.ID,
		BusinessName: business,
		Industry:     pick(f.rnd, industries),
		State:        pick(f.rnd, states),
		Suburb:       gofakeit.City(),
		Postcode:     fmt.Sprintf("%04d", gofakeit.Number(800, 7999)),
		About:        gofakeit.Paragraph(1, 3, 10, " "),
		Website:      gofakeit.URL(),
		ContactName:  gofakeit.Name(),
	}
	for _, override := range overrides {
		override(profile)
	}
	if err := f.persist("CreateEmployer", profile, &profile.ID); err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

// CreateMaker persists a WHV job seeker account and its visa profile.
func (f *Factory) CreateMaker(overrides ...func(*models.MakerProfile)) (*models.User, *models.MakerProfile, error) {
	given, family := gofakeit.FirstName(), gofakeit.LastName()
	user, err := f.CreateUser(models.RoleWHV, func(u *models.User) { u.DisplayName = given + " " + family })
	if err != nil {
		return nil, nil, err
	}
	expiry := time.Now().AddDate(0, f.rnd.Intn(12)+1, 0)
	available := time.Now().AddDate(0, 0, f.rnd.Intn(60))
	profile := &models.MakerProfile{
		UserID:            user.ID,
		GivenName:         given,
		FamilyName:        family,
		Nationality:       pick(f.rnd, nationalities),
		VisaType:          pick(f.rnd, visaTypes),
		VisaStage:         pick(f.rnd, visaStages),
		VisaExpiry:        &expiry,
		PreferredIndustry: pick(f.rnd, industries),
		PreferredState:    pick(f.rnd, states),
		Bio:               gofakeit.Sentence(15),
		AvailableFrom:     &available,
	}
	for _, override := range overrides {
		override(profile)
	}
	if err := f.persist("CreateMaker", profile, &profile.ID); err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

// BuildJob constructs an open job post for employer without persisting it.
func (f *Factory) BuildJob(employer *models.EmployerProfile, overrides ...func(*models.JobPost)) *models.JobPost {
	payMin := float64(gofakeit.Number(24, 32))
	start := time.Now().AddDate(0, 0, f.rnd.Intn(45))
	job := &models.JobPost{
		EmployerID:  employer.UserID,
		Title:       pick(f.rnd, jobTitles),
		Industry:    employer.Industry,
		State:       employer.State,
		Suburb:      employer.Suburb,
		PayMin:      payMin,
		PayMax:      payMin + float64(gofakeit.Number(0, 8)),
		StartDate:   &start,
		Description: gofakeit.Paragraph(2, 3, 12, "\n"),
		Status:      models.JobStatusOpen,
		CreatedAt:   f.createdAt(),
	}
	for _, override := range overrides {
		override(job)
	}
	return job
}

// CreateJob persists a job built by BuildJob.
func (f *Factory) CreateJob(employer *models.EmployerProfile, overrides ...func(*models.JobPost)) (*models.JobPost, error) {
	job := f.BuildJob(employer, overrides...)
	if err := f.persist("CreateJob", job, &job.ID); err != nil {
		return nil, err
	}
	return job, nil
}

// CreateLike persists a like from liker to liked in the context of jobPostID (0 for none).
func (f *Factory) CreateLike(liker, liked *models.User, jobPostID uint) (*models.Like, error) {
	like := &models.Like{
		LikerID:     liker.ID,
		LikerRole:   liker.Role,
		LikedUserID: liked.ID,
		JobPostID:   jobPostID,
	}
	if err := f.persist("CreateLike", like, &like.ID); err != nil {
		return nil, err
	}
	return like, nil
}
