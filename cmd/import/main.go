package main

import (
	"encoding/json"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/labormap/core/internal/config"
	"github.com/labormap/core/internal/database"
	"github.com/labormap/core/internal/modules/landmark"
)

// scrapedRecord is the shape emitted by the geocoding pipeline. Field names
// differ from the API DTO, so the importer CLI translates before reconciling.
type scrapedRecord struct {
	Name         string              `json:"name"`
	City         string              `json:"city"`
	State        string              `json:"state"`
	Country      string              `json:"country"`
	Type         string              `json:"type"`
	Category     string              `json:"category"`
	Description  string              `json:"description"`
	Address      string              `json:"address"`
	Latitude     *landmark.FlexFloat `json:"latitude"`
	Longitude    *landmark.FlexFloat `json:"longitude"`
	Lat          *landmark.FlexFloat `json:"lat"`
	Lng          *landmark.FlexFloat `json:"lng"`
	ContactEmail string              `json:"contact_email"`
	Email        string              `json:"email"`
	Website      string              `json:"website"`
	Phone        string              `json:"phone"`
	Telephone    string              `json:"telephone"`
	URL          string              `json:"url"`
	SourceURL    string              `json:"sourceUrl"`
}

func (s *scrapedRecord) toDTO(published bool) landmark.ImportRecordDTO {
	dto := landmark.ImportRecordDTO{
		Name:        s.Name,
		City:        s.City,
		State:       s.State,
		Country:     s.Country,
		Category:    firstNonEmpty(s.Category, s.Type),
		Description: s.Description,
		Address:     s.Address,
		Email:       firstNonEmpty(s.Email, s.ContactEmail),
		Website:     s.Website,
		Telephone:   firstNonEmpty(s.Telephone, s.Phone),
		SourceURL:   firstNonEmpty(s.SourceURL, s.URL),
		IsPublished: &published,
	}
	dto.Lat = firstCoord(s.Lat, s.Latitude)
	dto.Lng = firstCoord(s.Lng, s.Longitude)
	return dto
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstCoord(values ...*landmark.FlexFloat) *landmark.FlexFloat {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	filePath := flag.String("file", "", "Path to a JSON array of landmark records")
	unpublished := flag.Bool("unpublished", false, "Import records as unpublished")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *filePath == "" {
		logger.Fatal("-file is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	payload, err := os.ReadFile(*filePath)
	if err != nil {
		logger.Fatal("failed to read import file", zap.Error(err))
	}
	var scraped []scrapedRecord
	if err := json.Unmarshal(payload, &scraped); err != nil {
		logger.Fatal("import file must be a JSON array of records", zap.Error(err))
	}

	records := make([]landmark.ImportRecordDTO, 0, len(scraped))
	for i := range scraped {
		records = append(records, scraped[i].toDTO(!*unpublished))
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}

	stats, err := landmark.NewImporter(db).Run(records)
	if err != nil {
		logger.Fatal("import failed, no records were applied", zap.Error(err))
	}
	logger.Info("import complete",
		zap.Int("added", stats.Added),
		zap.Int("updated", stats.Updated),
		zap.Int("skipped", stats.Skipped),
		zap.Int("total", len(records)),
	)
}
