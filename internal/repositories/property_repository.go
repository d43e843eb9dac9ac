package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stayflo/internal/infra"
	"stayflo/internal/models/db_models"
	"stayflo/pkg/utils"
)

type PropertyRepository interface {
	GetBySlug(ctx context.Context, slug string) (*db_models.Property, error)
	List(ctx context.Context) ([]db_models.Property, error)
	Upsert(ctx context.Context, property *db_models.Property) error
}

type propertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

// MigrateProperties creates or updates the property tables.
func MigrateProperties(db *gorm.DB) error {
	if err := db.AutoMigrate(&db_models.Property{}, &db_models.PropertyArea{}); err != nil {
		return fmt.Errorf("%w: migrate properties: %v", utils.ErrDatabaseError, err)
	}
	return nil
}

func (r *propertyRepository) GetBySlug(ctx context.Context, slug string) (*db_models.Property, error) {
	var p db_models.Property
	err := r.db.WithContext(ctx).
		Preload("Areas", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("slug = ?", normalizeSlug(slug)).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", utils.ErrPropertyNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return &p, nil
}

func (r *propertyRepository) List(ctx context.Context) ([]db_models.Property, error) {
	var out []db_models.Property
	err := r.db.WithContext(ctx).
		Preload("Areas", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("slug ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return out, nil
}

// Upsert writes the property by slug and replaces its areas in one
// transaction.
func (r *propertyRepository) Upsert(ctx context.Context, property *db_models.Property) error {
	property.Slug = normalizeSlug(property.Slug)
	areas := property.Areas

	tx, err := infra.StartTransaction(r.db.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	err = infra.ReleaseTransaction(tx, upsertProperty(tx, property, areas))
	property.Areas = areas
	if err != nil {
		return fmt.Errorf("%w: upsert property %q: %v", utils.ErrDatabaseError, property.Slug, err)
	}
	return nil
}

func upsertProperty(tx *gorm.DB, property *db_models.Property, areas []db_models.PropertyArea) error {
	var existing db_models.Property
	err := tx.Where("slug = ?", property.Slug).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		property.Areas = nil
		if err := tx.Create(property).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		property.ID = existing.ID
		property.Areas = nil
		if err := tx.Omit(clause.Associations).Save(property).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("property_id = ?", property.ID).Delete(&db_models.PropertyArea{}).Error; err != nil {
			return err
		}
	}

	for i := range areas {
		areas[i].ID = uuid.Nil
		areas[i].PropertyID = property.ID
		areas[i].Position = i
	}
	if len(areas) > 0 {
		return tx.Create(&areas).Error
	}
	return nil
}

// memoryPropertyRepository serves the catalog when no database is set up.
type memoryPropertyRepository struct {
	mu    sync.RWMutex
	items map[string]db_models.Property
}

func NewMemoryPropertyRepository(seed ...db_models.Property) PropertyRepository {
	r := &memoryPropertyRepository{items: make(map[string]db_models.Property, len(seed))}
	for _, p := range seed {
		p.Slug = normalizeSlug(p.Slug)
		r.items[p.Slug] = p
	}
	return r
}

func (r *memoryPropertyRepository) GetBySlug(_ context.Context, slug string) (*db_models.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[normalizeSlug(slug)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", utils.ErrPropertyNotFound, slug)
	}
	p.Areas = append([]db_models.PropertyArea(nil), p.Areas...)
	return &p, nil
}

func (r *memoryPropertyRepository) List(_ context.Context) ([]db_models.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]db_models.Property, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r *memoryPropertyRepository) Upsert(_ context.Context, property *db_models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	property.Slug = normalizeSlug(property.Slug)
	for i := range property.Areas {
		property.Areas[i].Position = i
	}
	r.items[property.Slug] = *property
	return nil
}

func normalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
