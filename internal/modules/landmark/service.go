package landmark

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/labormap/core/internal/models"
	"github.com/labormap/core/internal/pkg/pagination"
	"github.com/labormap/core/internal/pkg/response"
	"gorm.io/gorm"
)

type Service struct {
	db         *gorm.DB
	uploadsDir string
}

func NewService(db *gorm.DB, uploadsDir string) *Service {
	return &Service{db: db, uploadsDir: uploadsDir}
}

func preloadImages(db *gorm.DB) *gorm.DB {
	return db.Order("landmark_images.sort_order ASC")
}

// List returns landmarks newest-first. Unpublished records are only included
// for administrators.
func (s *Service) List(q pagination.Query, includeUnpublished bool) ([]models.LandmarkModel, *response.Pagination, error) {
	tx := s.db.Model(&models.LandmarkModel{}).
		Preload("Images", preloadImages).
		Order("created_at DESC, id DESC")
	if !includeUnpublished {
		tx = tx.Where("is_published = ?", true)
	}

	var items []models.LandmarkModel
	if q.Requested {
		pag, err := pagination.Paginate(tx, q, &items)
		if err != nil {
			return nil, nil, err
		}
		return items, &pag, nil
	}
	if err := tx.Find(&items).Error; err != nil {
		return nil, nil, err
	}
	return items, nil, nil
}

// GetByID returns the landmark or (nil, nil) when absent. Unpublished records
// are hidden from the public.
func (s *Service) GetByID(id uint, includeUnpublished bool) (*models.LandmarkModel, error) {
	var l models.LandmarkModel
	tx := s.db.Preload("Images", preloadImages)
	if !includeUnpublished {
		tx = tx.Where("is_published = ?", true)
	}
	if err := tx.First(&l, "landmarks.id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// Create stores a new landmark. Public suggestions are always unpublished
// regardless of the payload; only admins may publish on creation.
func (s *Service) Create(dto *CreateLandmarkDTO, isAdmin bool) (*models.LandmarkModel, error) {
	published := false
	if isAdmin && dto.IsPublished != nil {
		published = *dto.IsPublished
	}

	l := models.LandmarkModel{
		Name:        strings.TrimSpace(dto.Name),
		City:        dto.City,
		State:       dto.State,
		Country:     normalizeCountry(dto.Country),
		Category:    dto.Category,
		Description: dto.Description,
		Address:     dto.Address,
		Lat:         dto.latValue(),
		Lng:         dto.lngValue(),
		Email:       optional(dto.Email),
		Website:     optional(dto.Website),
		Telephone:   optional(dto.Telephone),
		IsPublished: published,

		SubmitterName:    strings.TrimSpace(dto.SubmitterName),
		SubmitterEmail:   strings.TrimSpace(dto.SubmitterEmail),
		SubmitterComment: strings.TrimSpace(dto.SubmitterComment),
	}
	if err := s.db.Create(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// Update applies the non-nil fields of the DTO.
func (s *Service) Update(id uint, dto *UpdateLandmarkDTO) (*models.LandmarkModel, error) {
	l, err := s.GetByID(id, true)
	if err != nil || l == nil {
		return l, err
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.City != nil {
		updates["city"] = *dto.City
	}
	if dto.State != nil {
		updates["state"] = *dto.State
	}
	if dto.Country != nil {
		updates["country"] = normalizeCountry(*dto.Country)
	}
	if dto.Category != nil {
		updates["category"] = *dto.Category
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Address != nil {
		updates["address"] = *dto.Address
	}
	if dto.Lat != nil {
		updates["lat"] = float64(*dto.Lat)
	}
	if dto.Lng != nil {
		updates["lng"] = float64(*dto.Lng)
	}
	if dto.Email != nil {
		updates["email"] = optional(*dto.Email)
	}
	if dto.Website != nil {
		updates["website"] = optional(*dto.Website)
	}
	if dto.Telephone != nil {
		updates["telephone"] = optional(*dto.Telephone)
	}
	if dto.IsPublished != nil {
		updates["is_published"] = *dto.IsPublished
	}
	if len(updates) == 0 {
		return l, nil
	}

	if err := s.db.Model(l).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id, true)
}

// SetPublished toggles moderation state. Returns gorm.ErrRecordNotFound when
// the landmark does not exist.
func (s *Service) SetPublished(id uint, published bool) error {
	res := s.db.Model(&models.LandmarkModel{}).Where("id = ?", id).Update("is_published", published)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a landmark together with its image rows, then removes the
// image files from disk. Returns gorm.ErrRecordNotFound when absent.
func (s *Service) Delete(id uint) error {
	var images []models.LandmarkImageModel

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var l models.LandmarkModel
		if err := tx.First(&l, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("landmark_id = ?", id).Find(&images).Error; err != nil {
			return err
		}
		if err := tx.Where("landmark_id = ?", id).Delete(&models.LandmarkImageModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&l).Error
	})
	if err != nil {
		return err
	}

	// Row deletion committed; file removal is best effort.
	for _, img := range images {
		removeUploadFile(s.uploadsDir, img.Filename)
		removeUploadFile(s.uploadsDir, img.ThumbnailFilename)
	}
	return nil
}

func removeUploadFile(dir, name string) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." {
		return
	}
	_ = os.Remove(filepath.Join(dir, name))
}
