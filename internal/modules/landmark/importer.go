package landmark

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/labormap/core/internal/models"
	"gorm.io/gorm"
)

const (
	// coordTolerance is the ± band (≈11 meters) for manual duplicate matching.
	coordTolerance = 0.0001
	// coordEpsilon widens the band edges against float64 representation noise.
	coordEpsilon = 1e-9
)

// ImportStats summarizes one reconciled batch.
type ImportStats struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ValidationError rejects a batch before any store interaction.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
}

// Importer reconciles bulk import batches against the landmarks table.
//
// Each batch runs inside a single transaction: matcher lookups and mutations
// see earlier records of the same batch, so intra-batch duplicates are caught,
// and any failure rolls the whole batch back. Re-submitting a batch is safe:
// previously imported records resolve to update or skip, never to a second
// create.
type Importer struct {
	db *gorm.DB
}

func NewImporter(db *gorm.DB) *Importer { return &Importer{db: db} }

// Run validates and reconciles a batch, returning the stats on full success.
// On any error nothing is persisted and the zero stats are returned.
func (im *Importer) Run(records []ImportRecordDTO) (ImportStats, error) {
	if err := validateRecords(records); err != nil {
		return ImportStats{}, err
	}

	var stats ImportStats
	err := im.db.Transaction(func(tx *gorm.DB) error {
		// Strictly sequential: record N+1 is not matched until record N's
		// mutation completed, otherwise two near-duplicates in one batch
		// could both see "no match" and both be created.
		for i := range records {
			if err := reconcile(tx, &records[i], &stats); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ImportStats{}, err
	}
	return stats, nil
}

// validateRecords fails closed on structurally unusable records. Runs before
// the transaction is opened; a rejected batch never touches the store.
func validateRecords(records []ImportRecordDTO) error {
	for i := range records {
		if strings.TrimSpace(records[i].Name) == "" {
			return &ValidationError{Index: i, Reason: "name is required"}
		}
		if records[i].Lat == nil || records[i].Lng == nil {
			return &ValidationError{Index: i, Reason: "lat and lng are required"}
		}
	}
	return nil
}

type matchVerdict int

const (
	verdictCreate matchVerdict = iota
	verdictUpdate
	verdictSkip
)

// match decides what to do with one incoming record given the transaction's
// current view of the table. For a fixed store state the result is a pure
// function of the record.
func match(tx *gorm.DB, rec *ImportRecordDTO) (matchVerdict, uint, error) {
	if src := strings.TrimSpace(rec.SourceURL); src != "" {
		var existing models.LandmarkModel
		err := tx.Select("id").Where("source_url = ?", src).First(&existing).Error
		switch {
		case err == nil:
			return verdictUpdate, existing.ID, nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			return verdictCreate, 0, nil
		default:
			return verdictCreate, 0, err
		}
	}

	// Manual record: duplicate when an existing row has the identical name and
	// coordinates within the tolerance band. Both sides are rounded to four
	// decimal places first to absorb float noise from repeated geocoding of
	// the same address. Sourced rows stay in the candidate pool: a manual
	// suggestion landing exactly on a scraped record's name and position is
	// the same site.
	lat := roundCoord(rec.lat())
	lng := roundCoord(rec.lng())
	var existing models.LandmarkModel
	err := tx.Select("id").
		Where("name = ?", rec.Name).
		Where("ROUND(lat, 4) BETWEEN ? AND ?", lat-coordTolerance-coordEpsilon, lat+coordTolerance+coordEpsilon).
		Where("ROUND(lng, 4) BETWEEN ? AND ?", lng-coordTolerance-coordEpsilon, lng+coordTolerance+coordEpsilon).
		First(&existing).Error
	switch {
	case err == nil:
		return verdictSkip, existing.ID, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return verdictCreate, 0, nil
	default:
		return verdictCreate, 0, err
	}
}

// reconcile applies the matcher's verdict for one record.
func reconcile(tx *gorm.DB, rec *ImportRecordDTO, stats *ImportStats) error {
	verdict, existingID, err := match(tx, rec)
	if err != nil {
		return err
	}

	switch verdict {
	case verdictUpdate:
		// Incoming values win for every mutable field; id and sourceUrl are
		// preserved.
		err := tx.Model(&models.LandmarkModel{}).
			Where("id = ?", existingID).
			Updates(rec.updateColumns()).Error
		if err != nil {
			return err
		}
		stats.Updated++

	case verdictSkip:
		// Duplicate of an existing row; the stored record is left untouched.
		stats.Skipped++

	default:
		if err := tx.Create(rec.toModel()).Error; err != nil {
			return err
		}
		stats.Added++
	}
	return nil
}

func (r *ImportRecordDTO) toModel() *models.LandmarkModel {
	m := &models.LandmarkModel{
		Name:        strings.TrimSpace(r.Name),
		City:        r.City,
		State:       r.State,
		Country:     normalizeCountry(r.Country),
		Category:    r.Category,
		Description: r.Description,
		Address:     r.Address,
		Lat:         r.lat(),
		Lng:         r.lng(),
		Email:       optional(r.Email),
		Website:     optional(r.Website),
		Telephone:   optional(r.Telephone),
		IsPublished: r.published(),
	}
	if src := strings.TrimSpace(r.SourceURL); src != "" {
		m.SourceURL = &src
	}
	return m
}

func (r *ImportRecordDTO) updateColumns() map[string]interface{} {
	return map[string]interface{}{
		"name":         strings.TrimSpace(r.Name),
		"city":         r.City,
		"state":        r.State,
		"country":      normalizeCountry(r.Country),
		"category":     r.Category,
		"description":  r.Description,
		"address":      r.Address,
		"lat":          r.lat(),
		"lng":          r.lng(),
		"email":        optional(r.Email),
		"website":      optional(r.Website),
		"telephone":    optional(r.Telephone),
		"is_published": r.published(),
	}
}

func roundCoord(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
