package models

import "time"

// DefaultCountry is applied whenever an incoming record carries no country.
const DefaultCountry = "USA"

// LandmarkModel is a labor-history landmark. Records created through the public
// suggestion form start unpublished; scraped imports and admin entries are
// published directly.
type LandmarkModel struct {
	ID          uint    `json:"id"          gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name"        gorm:"not null;index:idx_landmarks_name_coords,priority:1"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Country     string  `json:"country"     gorm:"default:USA"`
	Category    string  `json:"category"` // comma-joined tag string
	Description string  `json:"description" gorm:"type:text"`
	Address     string  `json:"address"     gorm:"type:text"`
	Lat         float64 `json:"lat"         gorm:"index:idx_landmarks_name_coords,priority:2"`
	Lng         float64 `json:"lng"         gorm:"index:idx_landmarks_name_coords,priority:3"`
	Email       *string `json:"email,omitempty"`
	Website     *string `json:"website,omitempty"`
	Telephone   *string `json:"telephone,omitempty"`

	// SourceURL correlates repeated imports of the same scraped record.
	// Nullable-unique: manual records carry no source URL.
	SourceURL   *string `json:"sourceUrl,omitempty" gorm:"size:512;uniqueIndex"`
	IsPublished bool    `json:"isPublished"         gorm:"default:false;index"`

	// Submitter metadata from the public suggestion form, admin-only.
	SubmitterName    string `json:"submitterName,omitempty"`
	SubmitterEmail   string `json:"submitterEmail,omitempty"`
	SubmitterComment string `json:"submitterComment,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Images []LandmarkImageModel `json:"images,omitempty" gorm:"foreignKey:LandmarkID;constraint:OnDelete:CASCADE"`
}

func (LandmarkModel) TableName() string { return "landmarks" }
