// Package job provides CRUD operations for job postings.
package job

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/go-jobboard/jobboard/internal/db/models"
)

const (
	ownerQueryPattern = "id = ? AND owner_id = ?"
)

var (
	// ErrJobNotFound is returned when a posting is not found or owned by someone else.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobIDEmpty is returned when an operation is attempted without a job id.
	ErrJobIDEmpty = errors.New("job id cannot be empty")
	// ErrOwnerIDEmpty is returned when an owner scoped operation has no owner id.
	ErrOwnerIDEmpty = errors.New("owner id cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Filter narrows public listing queries.
type Filter struct {
	Search string
	Type   models.JobType
	Offset int
	Limit  int
}

// Create stores a new posting.
func Create(db *gorm.DB, j *models.Job) error {
	if db == nil {
		return ErrDBNil
	}

	if j.OwnerID == "" {
		return ErrOwnerIDEmpty
	}

	return db.Create(j).Error
}

// GetByID retrieves a posting by its id.
func GetByID(db *gorm.DB, id string) (*models.Job, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if id == "" {
		return nil, ErrJobIDEmpty
	}

	var j models.Job

	result := db.Where("id = ?", id).First(&j)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}

		return nil, result.Error
	}

	return &j, nil
}

// GetOwned retrieves a posting by id, restricted to its owner.
func GetOwned(db *gorm.DB, id, ownerID string) (*models.Job, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if id == "" {
		return nil, ErrJobIDEmpty
	}

	if ownerID == "" {
		return nil, ErrOwnerIDEmpty
	}

	var j models.Job

	result := db.Where(ownerQueryPattern, id, ownerID).First(&j)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}

		return nil, result.Error
	}

	return &j, nil
}

// ListByOwner retrieves all postings of one owner, newest first.
func ListByOwner(db *gorm.DB, ownerID string) ([]models.Job, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if ownerID == "" {
		return nil, ErrOwnerIDEmpty
	}

	var jobs []models.Job

	result := db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&jobs)
	if result.Error != nil {
		return nil, result.Error
	}

	return jobs, nil
}

// ListPublic retrieves postings for the public listing pages with optional
// search and type filters. It returns the page plus the total match count.
func ListPublic(db *gorm.DB, f Filter) ([]models.Job, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	query := db.Model(&models.Job{})

	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(company) LIKE ? OR LOWER(description) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}

	var jobs []models.Job

	result := query.Order("created_at DESC").Find(&jobs)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return jobs, total, nil
}

// Update persists changes to a posting, restricted to its owner.
func Update(db *gorm.DB, j *models.Job, ownerID string) error {
	if db == nil {
		return ErrDBNil
	}

	if j.ID == "" {
		return ErrJobIDEmpty
	}

	if ownerID == "" {
		return ErrOwnerIDEmpty
	}

	result := db.Model(&models.Job{}).
		Where(ownerQueryPattern, j.ID, ownerID).
		Updates(map[string]interface{}{
			"title":       j.Title,
			"company":     j.Company,
			"description": j.Description,
			"salary":      j.Salary,
			"city":        j.City,
			"country":     j.Country,
			"remote":      j.Remote,
			"type":        j.Type,
			"apply_url":   j.ApplyURL,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}

// Delete removes a posting, restricted to its owner.
func Delete(db *gorm.DB, id, ownerID string) error {
	if db == nil {
		return ErrDBNil
	}

	if id == "" {
		return ErrJobIDEmpty
	}

	if ownerID == "" {
		return ErrOwnerIDEmpty
	}

	result := db.Where(ownerQueryPattern, id, ownerID).Delete(&models.Job{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}

	return nil
}
