package image

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/labormap/core/internal/models"
	"gorm.io/gorm"
)

// maxUploadBytes caps a single uploaded image.
const maxUploadBytes = 10 << 20 // 10 MiB

var (
	ErrLandmarkNotFound = errors.New("landmark not found")
	ErrImageNotFound    = errors.New("image not found")
	ErrInvalidUpload    = errors.New("invalid upload")
)

type Service struct {
	db         *gorm.DB
	uploadsDir string
}

func NewService(db *gorm.DB, uploadsDir string) *Service {
	return &Service{db: db, uploadsDir: uploadsDir}
}

// UploadsDir exposes the resolved uploads directory for the serving route.
func (s *Service) UploadsDir() string { return s.uploadsDir }

// SaveUpload stores one uploaded image and its derived thumbnail, appending it
// after the landmark's current maximum sort order.
func (s *Service) SaveUpload(landmarkID uint, fh *multipart.FileHeader) (*models.LandmarkImageModel, error) {
	if fh.Size > maxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d MiB", ErrInvalidUpload, maxUploadBytes>>20)
	}
	if !allowedUploadExt(fh.Filename) {
		return nil, fmt.Errorf("%w: unsupported image format", ErrInvalidUpload)
	}

	var exists int64
	if err := s.db.Model(&models.LandmarkModel{}).Where("id = ?", landmarkID).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrLandmarkNotFound
	}

	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	payload, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(payload)) > maxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d MiB", ErrInvalidUpload, maxUploadBytes>>20)
	}

	thumb, err := makeThumbnail(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}

	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return nil, err
	}
	stored := buildFileName(fh.Filename)
	thumbnail := thumbName(stored)
	if err := os.WriteFile(filepath.Join(s.uploadsDir, stored), payload, 0o644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(s.uploadsDir, thumbnail), thumb, 0o644); err != nil {
		os.Remove(filepath.Join(s.uploadsDir, stored))
		return nil, err
	}

	var img models.LandmarkImageModel
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var next int
		row := tx.Model(&models.LandmarkImageModel{}).
			Where("landmark_id = ?", landmarkID).
			Select("COALESCE(MAX(sort_order) + 1, 0)")
		if err := row.Scan(&next).Error; err != nil {
			return err
		}

		img = models.LandmarkImageModel{
			LandmarkID:        landmarkID,
			Filename:          stored,
			ThumbnailFilename: thumbnail,
			SortOrder:         next,
		}
		return tx.Create(&img).Error
	})
	if err != nil {
		os.Remove(filepath.Join(s.uploadsDir, stored))
		os.Remove(filepath.Join(s.uploadsDir, thumbnail))
		return nil, err
	}
	return &img, nil
}

// List returns a landmark's images in sort order.
func (s *Service) List(landmarkID uint) ([]models.LandmarkImageModel, error) {
	var items []models.LandmarkImageModel
	err := s.db.Where("landmark_id = ?", landmarkID).
		Order("sort_order ASC").
		Find(&items).Error
	return items, err
}

// UpdateCaption sets an image's caption.
func (s *Service) UpdateCaption(landmarkID, imageID uint, caption string) (*models.LandmarkImageModel, error) {
	var img models.LandmarkImageModel
	err := s.db.First(&img, "id = ? AND landmark_id = ?", imageID, landmarkID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	if err := s.db.Model(&img).Update("caption", caption).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

// Reorder re-sequences a landmark's images to match the given id order. Every
// image of the landmark must appear exactly once; sort orders come out dense
// from 0.
func (s *Service) Reorder(landmarkID uint, ids []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var current []models.LandmarkImageModel
		if err := tx.Where("landmark_id = ?", landmarkID).Find(&current).Error; err != nil {
			return err
		}
		if len(ids) != len(current) {
			return fmt.Errorf("%w: reorder must list all %d images", ErrInvalidUpload, len(current))
		}
		known := make(map[uint]bool, len(current))
		for _, img := range current {
			known[img.ID] = true
		}
		seen := make(map[uint]bool, len(ids))
		for _, id := range ids {
			if !known[id] || seen[id] {
				return fmt.Errorf("%w: unknown or repeated image id %d", ErrInvalidUpload, id)
			}
			seen[id] = true
		}

		for order, id := range ids {
			err := tx.Model(&models.LandmarkImageModel{}).
				Where("id = ?", id).
				Update("sort_order", order).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes an image row, re-densifies the remaining sort orders, and
// removes both files from disk.
func (s *Service) Delete(landmarkID, imageID uint) error {
	var img models.LandmarkImageModel

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&img, "id = ? AND landmark_id = ?", imageID, landmarkID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrImageNotFound
			}
			return err
		}
		if err := tx.Delete(&img).Error; err != nil {
			return err
		}

		var rest []models.LandmarkImageModel
		if err := tx.Where("landmark_id = ?", landmarkID).Order("sort_order ASC").Find(&rest).Error; err != nil {
			return err
		}
		for order, item := range rest {
			if item.SortOrder == order {
				continue
			}
			err := tx.Model(&models.LandmarkImageModel{}).
				Where("id = ?", item.ID).
				Update("sort_order", order).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	os.Remove(filepath.Join(s.uploadsDir, filepath.Base(img.Filename)))
	os.Remove(filepath.Join(s.uploadsDir, filepath.Base(img.ThumbnailFilename)))
	return nil
}
