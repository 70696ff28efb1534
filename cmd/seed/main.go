// Command main runs the database seeder for WHV Match.
package main

import (
	"flag"
	"log"

	"whvmatch/internal/config"
	"whvmatch/internal/database"
	"whvmatch/internal/seed"
)

func main() {
	numEmployers := flag.Int("employers", 20, "Number of employers to create")
	numMakers := flag.Int("makers", 100, "Number of WHV makers to create")
	jobsPerEmployer := flag.Int("jobs", 3, "Job posts per employer")
	likeChance := flag.Float64("like-chance", 0.15, "Probability that a maker likes a job and that the employer likes back")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt for faster local seeding")
	maxDays := flag.Int("days", 30, "Spread created_at over the last N days")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d employers x %d jobs, %d makers, like chance %.2f, clean=%v\n",
		*numEmployers, *jobsPerEmployer, *numMakers, *likeChance, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	res, err := seed.Seed(db, seed.Options{
		NumEmployers:    *numEmployers,
		NumMakers:       *numMakers,
		JobsPerEmployer: *jobsPerEmployer,
		LikeChance:      *likeChance,
		ShouldClean:     *shouldClean,
		SeedOptions: seed.SeedOptions{
			SkipBcrypt: *fast,
			MaxDays:    *maxDays,
		},
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	if err := seed.Demo(db); err != nil {
		log.Fatalf("❌ Demo account seeding failed: %v", err)
	}

	log.Printf("✨ All done! %d employers, %d makers, %d jobs, %d likes, %d matches.",
		res.Employers, res.Makers, res.Jobs, res.Likes, res.Matches)
	log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
}
