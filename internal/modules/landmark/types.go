package landmark

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/labormap/core/internal/models"
)

// FlexFloat decodes a JSON number or a numeric string. Unparseable values
// (including NaN/Inf strings) fall back to 0, mirroring the permissive
// coordinate handling of the scraped source data.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			*f = 0
			return nil
		}
		s = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

// ImportRecordDTO is one element of the bulk import payload.
type ImportRecordDTO struct {
	Name        string     `json:"name"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	Country     string     `json:"country"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Address     string     `json:"address"`
	Lat         *FlexFloat `json:"lat"`
	Lng         *FlexFloat `json:"lng"`
	Email       string     `json:"email"`
	Website     string     `json:"website"`
	Telephone   string     `json:"telephone"`
	SourceURL   string     `json:"sourceUrl"`
	IsPublished *bool      `json:"isPublished"`
}

func (r *ImportRecordDTO) lat() float64 {
	if r.Lat == nil {
		return 0
	}
	return float64(*r.Lat)
}

func (r *ImportRecordDTO) lng() float64 {
	if r.Lng == nil {
		return 0
	}
	return float64(*r.Lng)
}

// published defaults to true: bulk imports are curated data unless the record
// explicitly says otherwise.
func (r *ImportRecordDTO) published() bool {
	if r.IsPublished != nil {
		return *r.IsPublished
	}
	return true
}

// CreateLandmarkDTO is the body of POST /landmarks: a public suggestion or an
// admin entry.
type CreateLandmarkDTO struct {
	Name        string     `json:"name"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	Country     string     `json:"country"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Address     string     `json:"address"`
	Lat         *FlexFloat `json:"lat"`
	Lng         *FlexFloat `json:"lng"`
	Email       string     `json:"email"`
	Website     string     `json:"website"`
	Telephone   string     `json:"telephone"`
	IsPublished *bool      `json:"isPublished"`

	SubmitterName    string `json:"submitterName"`
	SubmitterEmail   string `json:"submitterEmail"`
	SubmitterComment string `json:"submitterComment"`
}

func (d *CreateLandmarkDTO) latValue() float64 {
	if d.Lat == nil {
		return 0
	}
	return float64(*d.Lat)
}

func (d *CreateLandmarkDTO) lngValue() float64 {
	if d.Lng == nil {
		return 0
	}
	return float64(*d.Lng)
}

// UpdateLandmarkDTO is the body of PUT /landmarks/:id. Nil fields are left
// untouched.
type UpdateLandmarkDTO struct {
	Name        *string    `json:"name"`
	City        *string    `json:"city"`
	State       *string    `json:"state"`
	Country     *string    `json:"country"`
	Category    *string    `json:"category"`
	Description *string    `json:"description"`
	Address     *string    `json:"address"`
	Lat         *FlexFloat `json:"lat"`
	Lng         *FlexFloat `json:"lng"`
	Email       *string    `json:"email"`
	Website     *string    `json:"website"`
	Telephone   *string    `json:"telephone"`
	IsPublished *bool      `json:"isPublished"`
}

// publishDTO is the body of PATCH /landmarks/:id/publish.
type publishDTO struct {
	IsPublished bool `json:"isPublished"`
}

type landmarkResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Country     string  `json:"country"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Address     string  `json:"address"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Email       *string `json:"email,omitempty"`
	Website     *string `json:"website,omitempty"`
	Telephone   *string `json:"telephone,omitempty"`
	SourceURL   *string `json:"sourceUrl,omitempty"`
	IsPublished bool    `json:"isPublished"`

	SubmitterName    string `json:"submitterName,omitempty"`
	SubmitterEmail   string `json:"submitterEmail,omitempty"`
	SubmitterComment string `json:"submitterComment,omitempty"`

	CreatedAt time.Time                   `json:"createdAt"`
	UpdatedAt time.Time                   `json:"updatedAt"`
	Images    []models.LandmarkImageModel `json:"images"`
}

// toResponse converts a model to its API shape. Submitter metadata is only
// exposed to administrators.
func toResponse(l *models.LandmarkModel, isAdmin bool) landmarkResponse {
	resp := landmarkResponse{
		ID:          l.ID,
		Name:        l.Name,
		City:        l.City,
		State:       l.State,
		Country:     l.Country,
		Category:    l.Category,
		Description: l.Description,
		Address:     l.Address,
		Lat:         l.Lat,
		Lng:         l.Lng,
		Email:       l.Email,
		Website:     l.Website,
		Telephone:   l.Telephone,
		SourceURL:   l.SourceURL,
		IsPublished: l.IsPublished,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
		Images:      l.Images,
	}
	if resp.Images == nil {
		resp.Images = []models.LandmarkImageModel{}
	}
	if isAdmin {
		resp.SubmitterName = l.SubmitterName
		resp.SubmitterEmail = l.SubmitterEmail
		resp.SubmitterComment = l.SubmitterComment
	}
	return resp
}

// optional maps empty strings to NULL columns.
func optional(s string) *string {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return &v
}

// normalizeCountry applies the registry's default country to blank values.
func normalizeCountry(s string) string {
	v := strings.TrimSpace(s)
	if v == "" {
		return models.DefaultCountry
	}
	return v
}
