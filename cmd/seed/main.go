package main

import (
	"encoding/json"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/labormap/core/internal/config"
	"github.com/labormap/core/internal/database"
	"github.com/labormap/core/internal/models"
)

func strptr(s string) *string { return &s }

func sampleLandmarks() []models.LandmarkModel {
	return []models.LandmarkModel{
		{
			Name:        "Haymarket Martyrs' Monument",
			City:        "Forest Park",
			State:       "IL",
			Country:     models.DefaultCountry,
			Category:    "Monument,Memorial",
			Description: "Memorial to the workers executed after the 1886 Haymarket affair, a touchstone of the eight-hour-day movement.",
			Address:     "863 Des Plaines Ave, Forest Park, IL 60130",
			Lat:         41.8583,
			Lng:         -87.8162,
			IsPublished: true,
		},
		{
			Name:        "Triangle Shirtwaist Factory Site",
			City:        "New York",
			State:       "NY",
			Country:     models.DefaultCountry,
			Category:    "Historic Site",
			Description: "Site of the 1911 fire that killed 146 garment workers and galvanized workplace safety legislation.",
			Address:     "23-29 Washington Pl, New York, NY 10003",
			Lat:         40.7301,
			Lng:         -73.9957,
			Website:     strptr("https://rememberthetrianglefire.org"),
			IsPublished: true,
		},
		{
			Name:        "Pullman National Historical Park",
			City:        "Chicago",
			State:       "IL",
			Country:     models.DefaultCountry,
			Category:    "Museum,Historic Site",
			Description: "Company town at the center of the 1894 Pullman strike and the origins of Labor Day.",
			Address:     "11001 S Cottage Grove Ave, Chicago, IL 60628",
			Lat:         41.6928,
			Lng:         -87.6099,
			Website:     strptr("https://www.nps.gov/pull"),
			IsPublished: true,
		},
		{
			Name:        "Ludlow Massacre Memorial",
			City:        "Trinidad",
			State:       "CO",
			Country:     models.DefaultCountry,
			Category:    "Memorial",
			Description: "UMWA memorial at the site of the 1914 attack on a tent colony of striking coal miners and their families.",
			Address:     "Ludlow, CO 81082",
			Lat:         37.3392,
			Lng:         -104.5836,
			IsPublished: true,
		},
	}
}

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	filePath := flag.String("file", "", "Optional JSON array of landmarks to seed instead of the built-in samples")
	force := flag.Bool("force", false, "Seed even when the landmarks table is not empty")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}

	var count int64
	if err := db.Model(&models.LandmarkModel{}).Count(&count).Error; err != nil {
		logger.Fatal("failed to inspect landmarks table", zap.Error(err))
	}
	if count > 0 && !*force {
		logger.Info("landmarks table already populated, skipping seed", zap.Int64("count", count))
		return
	}

	landmarks := sampleLandmarks()
	if *filePath != "" {
		raw, err := os.ReadFile(*filePath)
		if err != nil {
			logger.Fatal("failed to read seed file", zap.Error(err))
		}
		landmarks = landmarks[:0]
		if err := json.Unmarshal(raw, &landmarks); err != nil {
			logger.Fatal("seed file must be a JSON array of landmarks", zap.Error(err))
		}
	}
	if err := db.Create(&landmarks).Error; err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
	logger.Info("seed complete", zap.Int("inserted", len(landmarks)))
}
