package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"maestro/internal/database"
	"maestro/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type performerEntry struct {
	Name        string              `yaml:"name"`
	CompanyName string              `yaml:"company_name"`
	AccountType string              `yaml:"account_type"`
	Category    string              `yaml:"category"`
	City        string              `yaml:"city"`
	Price       int64               `yaml:"price"`
	Email       string              `yaml:"email"`
	Phone       string              `yaml:"phone"`
	Description string              `yaml:"description"`
	Attributes  map[string][]string `yaml:"attributes"`
}

type performersConfig struct {
	Performers []performerEntry `yaml:"performers"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		seedPath = flag.String("performers", "configs/performers.yaml", "path to performers.yaml")
		dbPath   = flag.String("db", "./data/maestro.db", "path to sqlite db")
		approve  = flag.Bool("approve", false, "mark seeded performers as approved")
	)
	flag.Parse()

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		return fmt.Errorf("read performers: %w", err)
	}
	var cfg performersConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse performers: %w", err)
	}
	if len(cfg.Performers) == 0 {
		return fmt.Errorf("no performers in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created := 0
	for _, entry := range cfg.Performers {
		if !models.IsKnownCategory(entry.Category) {
			logger.Warn().Str("name", entry.Name).Str("category", entry.Category).Msg("unknown category, skipping")
			continue
		}

		status := models.ModerationPending
		if *approve {
			status = models.ModerationApproved
		}

		performer := &models.Performer{
			Name:             entry.Name,
			CompanyName:      entry.CompanyName,
			AccountType:      entry.AccountType,
			Category:         entry.Category,
			City:             entry.City,
			Price:            entry.Price,
			Email:            entry.Email,
			Phone:            entry.Phone,
			Description:      entry.Description,
			Attributes:       entry.Attributes,
			ModerationStatus: status,
			IsActive:         true,
		}
		if err := db.CreatePerformer(ctx, performer); err != nil {
			return fmt.Errorf("create performer %q: %w", entry.Name, err)
		}
		created++
	}

	logger.Info().Int("created", created).Msg("seed completed")
	return nil
}
