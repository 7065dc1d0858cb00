package models

import "time"

// LandmarkImageModel is a photo attached to a landmark. The stored file and its
// derived thumbnail live on disk under the uploads directory; deleting the row
// is expected to remove both files as well.
type LandmarkImageModel struct {
	ID                uint   `json:"id"                gorm:"primaryKey;autoIncrement"`
	LandmarkID        uint   `json:"landmarkId"        gorm:"not null;index"`
	Filename          string `json:"filename"          gorm:"not null"`
	ThumbnailFilename string `json:"thumbnailFilename" gorm:"not null"`
	Caption           string `json:"caption"`

	// SortOrder is a dense ascending sequence per landmark, starting at 0.
	SortOrder int `json:"sortOrder" gorm:"not null;default:0;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (LandmarkImageModel) TableName() string { return "landmark_images" }
