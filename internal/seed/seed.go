package seed

import (
	"fmt"
	"log"

	"whvmatch/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumEmployers    int
	NumMakers       int
	JobsPerEmployer int
	// LikeChance is the probability (0-1) that a maker likes a job, and that the
	// employer likes the maker back.
	LikeChance  float64
	ShouldClean bool
	SeedOptions
}

// Result summarizes what Seed created.
type Result struct {
	Employers int
	Makers    int
	Jobs      int
	Likes     int
	Matches   int
}

// Seed populates the database with employers, makers, jobs and likes.
func Seed(db *gorm.DB, opts Options) (*Result, error) {
	log.Printf("🌱 Seeding %d employers and %d makers...", opts.NumEmployers, opts.NumMakers)

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("clear existing data: %w", err)
		}
	}

	f := NewFactory(db, opts.SeedOptions)
	res := &Result{}

	var jobs []*models.JobPost
	employers := make(map[uint]*models.User)
	for i := 0; i < opts.NumEmployers; i++ {
		user, profile, err := f.CreateEmployer()
		if err != nil {
			return nil, fmt.Errorf("create employer: %w", err)
		}
		employers[user.ID] = user
		res.Employers++
		for j := 0; j < opts.JobsPerEmployer; j++ {
			job, err := f.CreateJob(profile)
			if err != nil {
				return nil, fmt.Errorf("create job: %w", err)
			}
			jobs = append(jobs, job)
			res.Jobs++
		}
	}
	log.Printf("✓ %d employers with %d jobs created", res.Employers, res.Jobs)

	for i := 0; i < opts.NumMakers; i++ {
		maker, _, err := f.CreateMaker()
		if err != nil {
			return nil, fmt.Errorf("create maker: %w", err)
		}
		res.Makers++

		for _, job := range jobs {
			if f.rnd.Float64() >= opts.LikeChance {
				continue
			}
			employer := employers[job.EmployerID]
			if _, err := f.CreateLike(maker, employer, job.ID); err != nil {
				return nil, fmt.Errorf("create maker like: %w", err)
			}
			res.Likes++
			if f.rnd.Float64() < opts.LikeChance {
				if _, err := f.CreateLike(employer, maker, job.ID); err != nil {
					return nil, fmt.Errorf("create employer like: %w", err)
				}
				res.Likes++
				res.Matches++
			}
		}
	}
	log.Printf("✓ %d makers, %d likes, %d matches created", res.Makers, res.Likes, res.Matches)
	return res, nil
}

func clearData(db *gorm.DB) error {
	// Children first.
	for _, model := range []any{
		&models.Notification{},
		&models.NotificationSetting{},
		&models.Like{},
		&models.JobPost{},
		&models.MakerProfile{},
		&models.EmployerProfile{},
		&models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
