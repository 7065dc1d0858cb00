package landmark

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/labormap/core/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.LandmarkModel{}, &models.LandmarkImageModel{}))
	return db
}

func countLandmarks(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.LandmarkModel{}).Count(&n).Error)
	return n
}

func flexPtr(v float64) *FlexFloat {
	f := FlexFloat(v)
	return &f
}

func sourcedRecord(name, url string, lat, lng float64) ImportRecordDTO {
	return ImportRecordDTO{
		Name:      name,
		Lat:       flexPtr(lat),
		Lng:       flexPtr(lng),
		SourceURL: url,
	}
}

func manualRecord(name string, lat, lng float64) ImportRecordDTO {
	return ImportRecordDTO{
		Name: name,
		Lat:  flexPtr(lat),
		Lng:  flexPtr(lng),
	}
}

func TestImporterCreatesNewRecords(t *testing.T) {
	db := newTestDB(t)
	im := NewImporter(db)

	stats, err := im.Run([]ImportRecordDTO{
		sourcedRecord("Haymarket Martyrs' Monument", "https://example.org/haymarket", 41.8583, -87.8162),
		manualRecord("Ludlow Massacre Memorial", 37.3392, -104.5836),
	})
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Added: 2}, stats)
	assert.EqualValues(t, 2, countLandmarks(t, db))
}

func TestImporterSourcedUpdateReplacesFieldsButKeepsIdentity(t *testing.T) {
	db := newTestDB(t)
	im := NewImporter(db)

	first := sourcedRecord("Old Name", "https://example.org/site", 40.0, -75.0)
	first.City = "Philadelphia"
	first.Description = "first pass"
	_, err := im.Run([]ImportRecordDTO{first})
	require.NoError(t, err)

	var before models.LandmarkModel
	require.NoError(t, db.First(&before).Error)

	second := sourcedRecord("New Name", "https://example.org/site", 41.5, -76.5)
	second.City = "Scranton"
	second.State = "PA"
	second.Description = "second pass"
	stats, err := im.Run([]ImportRecordDTO{second})
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Updated: 1}, stats)

	var after models.LandmarkModel
	require.NoError(t, db.First(&after).Error)
	assert.Equal(t, before.ID, after.ID)
	require.NotNil(t, after.SourceURL)
	assert.Equal(t, "https://example.org/site", *after.SourceURL)
	assert.Equal(t, "New Name", after.Name)
	assert.Equal(t, "Scranton", after.City)
	assert.Equal(t, "PA", after.State)
	assert.Equal(t, 41.5, after.Lat)
	assert.Equal(t, -76.5, after.Lng)
	assert.EqualValues(t, 1, countLandmarks(t, db))
}

func TestImporterIdempotentReimport(t *testing.T) {
	db := newTestDB(t)
	im := NewImporter(db)

	batch := []ImportRecordDTO{
		sourcedRecord("Pullman National Historical Park", "https://example.org/pullman", 41.6928, -87.6099),
		manualRecord("Triangle Shirtwaist Factory Site", 40.7301, -73.9957),
	}

	stats, err := im.Run(batch)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Added: 2}, stats)

	stats, err = im.Run(batch)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Updated: 1, Skipped: 1}, stats)
	assert.EqualValues(t, 2, countLandmarks(t, db))
}

func TestImporterManualCoordinateTolerance(t *testing.T) {
	db := newTestDB(t)
	im := NewImporter(db)

	_, err := im.Run([]ImportRecordDTO{manualRecord("Union Hall", 40.0000, -80.0000)})
	require.NoError(t, err)

	// 0.0001 degrees off in both axes is still the same site.
	stats, err := im.Run([]ImportRecordDTO{manualRecord("Union Hall", 40.0001, -80.0001)})
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Skipped: 1}, stats)

	// 0.01 degrees off is a different site with the same name.
	stats, err = im.Run([]ImportRecordDTO{manualRecord("Union Hall", 40.01, -80.0)})
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Added: 1}, stats)
	assert.EqualValues(t, 2, countLandmarks(t, db))
}

func TestImporterManualMatchRequiresExactName(t *testing.T) {
	db := newTestDB(t)
	im := NewImporter(db)

	_, err := im.Run([]ImportRecordDTO{manualRecord("Miners Memorial", 39.0, -78.0)})
	require.NoError(t, err)

	stats, err := im.Run([]ImportRecordDTO{manualRecord("Miners' Memorial", 39.0, -78.0)})
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Added: 1}, stats)
}

func TestImporterIntraBatchDuplicate(t *testing.T) {
	db := newTestDB(t)
	im := NewImporter(db)

	stats, err := im.Run([]ImportRecordDTO{
		manualRecord("Homestead Strike Site", 40.4084, -79.9106),
		manualRecord("Homestead Strike Site", 40.4084, -79.9106),
	})
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Added: 1, Skipped: 1}, stats)
	assert.EqualValues(t, 1, countLandmarks(t, db))
}

func TestImporterManualDuplicateOfSourcedRecordInSameBatch(t *testing.T) {
	db := newTestDB(t)
	im := NewImporter(db)

	sourced := sourcedRecord("Lawrence Textile Strike Marker", "https://example.org/lawrence", 42.7070, -71.1631)
	manual := manualRecord("Lawrence Textile Strike Marker", 42.7070, -71.1631)

	stats, err := im.Run([]ImportRecordDTO{sourced, manual})
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Added: 1, Skipped: 1}, stats)
	assert.EqualValues(t, 1, countLandmarks(t, db))
}

func TestImporterRollsBackWholeBatchOnStoreError(t *testing.T) {
	db := newTestDB(t)
	im := NewImporter(db)

	// Simulate a mid-batch constraint violation.
	require.NoError(t, db.Exec(`CREATE TRIGGER poison_guard BEFORE INSERT ON landmarks
		WHEN NEW.name = 'poison' BEGIN
			SELECT RAISE(ABORT, 'constraint failed');
		END`).Error)

	stats, err := im.Run([]ImportRecordDTO{
		manualRecord("Fine Record", 40.0, -80.0),
		manualRecord("poison", 41.0, -81.0),
	})
	require.Error(t, err)
	assert.Equal(t, ImportStats{}, stats)
	assert.EqualValues(t, 0, countLandmarks(t, db))
}

func TestImporterValidationFailsClosed(t *testing.T) {
	db := newTestDB(t)
	im := NewImporter(db)

	_, err := im.Run([]ImportRecordDTO{
		manualRecord("Valid Record", 40.0, -80.0),
		{Name: "", Lat: flexPtr(41.0), Lng: flexPtr(-81.0)},
	})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 1, vErr.Index)
	assert.EqualValues(t, 0, countLandmarks(t, db))

	_, err = im.Run([]ImportRecordDTO{{Name: "No Coordinates"}})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "lat and lng are required")
	assert.EqualValues(t, 0, countLandmarks(t, db))
}

func TestImporterDefaultsCountry(t *testing.T) {
	db := newTestDB(t)
	im := NewImporter(db)

	_, err := im.Run([]ImportRecordDTO{sourcedRecord("Border Site", "https://example.org/border", 40.0, -80.0)})
	require.NoError(t, err)

	var l models.LandmarkModel
	require.NoError(t, db.First(&l).Error)
	assert.Equal(t, models.DefaultCountry, l.Country)

	// Blank country on an update also resolves to the default.
	update := sourcedRecord("Border Site", "https://example.org/border", 40.0, -80.0)
	update.Country = ""
	_, err = im.Run([]ImportRecordDTO{update})
	require.NoError(t, err)
	require.NoError(t, db.First(&l).Error)
	assert.Equal(t, models.DefaultCountry, l.Country)

	canada := sourcedRecord("Winnipeg General Strike Site", "https://example.org/winnipeg", 49.8991, -97.1384)
	canada.Country = "Canada"
	_, err = im.Run([]ImportRecordDTO{canada})
	require.NoError(t, err)
	l = models.LandmarkModel{} // reset so the stale primary key is not added to the query
	require.NoError(t, db.Where("name = ?", "Winnipeg General Strike Site").First(&l).Error)
	assert.Equal(t, "Canada", l.Country)
}

func TestImporterRecordsDefaultToPublished(t *testing.T) {
	db := newTestDB(t)
	im := NewImporter(db)

	hidden := manualRecord("Hidden Site", 40.0, -80.0)
	f := false
	hidden.IsPublished = &f

	_, err := im.Run([]ImportRecordDTO{
		manualRecord("Visible Site", 41.0, -81.0),
		hidden,
	})
	require.NoError(t, err)

	var visible, unlisted models.LandmarkModel
	require.NoError(t, db.Where("name = ?", "Visible Site").First(&visible).Error)
	require.NoError(t, db.Where("name = ?", "Hidden Site").First(&unlisted).Error)
	assert.True(t, visible.IsPublished)
	assert.False(t, unlisted.IsPublished)
}

func TestFlexFloatUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{`40.7301`, 40.7301},
		{`"40.7301"`, 40.7301},
		{`"  -87.81 "`, -87.81},
		{`""`, 0},
		{`"NaN"`, 0},
		{`"Infinity"`, 0},
		{`"not a number"`, 0},
		{`null`, 0},
	}
	for _, tc := range cases {
		var f FlexFloat
		require.NoError(t, json.Unmarshal([]byte(tc.in), &f), tc.in)
		assert.EqualValues(t, tc.want, float64(f), tc.in)
	}
}
