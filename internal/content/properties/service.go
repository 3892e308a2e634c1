package properties

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"

	"github.com/odyssey-erp/odyssey-cms/internal/content/listing"
	"github.com/odyssey-erp/odyssey-cms/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-cms/internal/platform/httpx"
)

// Service holds the properties use cases.
type Service struct {
	*listing.Service[Property]
	repo     Repository
	validate *validator.Validate
}

// NewService wires the service. listCache and warmer may be nil.
func NewService(repo Repository, listCache *cache.ListCache, warmer listing.Warmer, logger *slog.Logger) *Service {
	return &Service{
		Service:  listing.NewService[Property](Schema, repo, listCache, warmer, logger),
		repo:     repo,
		validate: validator.New(),
	}
}

// Get loads one property.
func (s *Service) Get(ctx context.Context, id int64) (Property, error) {
	if id <= 0 {
		return Property{}, fmt.Errorf("properties: invalid id %d: %w", id, httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Create validates form and stores a new property.
func (s *Service) Create(ctx context.Context, form PropertyForm) (Property, error) {
	p, err := s.fromForm(form)
	if err != nil {
		return Property{}, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Property{}, err
	}
	s.Invalidate(ctx)
	return created, nil
}

// Update validates form and overwrites property id.
func (s *Service) Update(ctx context.Context, id int64, form PropertyForm) error {
	if id <= 0 {
		return fmt.Errorf("properties: invalid id %d: %w", id, httpx.ErrValidation)
	}
	p, err := s.fromForm(form)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, p); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

// ToggleFeatured flips the featured flag and returns its new value.
func (s *Service) ToggleFeatured(ctx context.Context, id int64) (bool, error) {
	featured, err := s.repo.ToggleFeatured(ctx, id)
	if err != nil {
		return false, err
	}
	s.Invalidate(ctx)
	return featured, nil
}

// Types lists the property types offered by the type filter and the form.
func (s *Service) Types(ctx context.Context) ([]PropertyType, error) {
	return s.repo.Types(ctx)
}

func (s *Service) fromForm(form PropertyForm) (Property, error) {
	form.Title = strings.TrimSpace(form.Title)
	form.City = strings.TrimSpace(form.City)
	form.State = strings.TrimSpace(form.State)
	form.Slug = strings.TrimSpace(form.Slug)
	if form.Slug == "" {
		form.Slug = slug.Make(form.Title)
	}
	if err := s.validate.Struct(form); err != nil {
		return Property{}, &FormError{Fields: fieldErrors(err)}
	}
	return Property{
		Title:          form.Title,
		Slug:           form.Slug,
		PropertyTypeID: form.PropertyTypeID,
		Status:         form.Status,
		Price:          form.Price,
		City:           form.City,
		State:          form.State,
		Bedrooms:       form.Bedrooms,
		Bathrooms:      form.Bathrooms,
		IsActive:       form.IsActive,
		IsFeatured:     form.IsFeatured,
	}, nil
}

// FormError lists the invalid fields of a PropertyForm by JSON name.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	return "properties: invalid form"
}

func (e *FormError) Unwrap() error {
	return httpx.ErrValidation
}

var fieldNames = map[string]string{
	"Title":          "title",
	"Slug":           "slug",
	"PropertyTypeID": "property_type_id",
	"Status":         "status",
	"Price":          "price",
	"City":           "city",
	"State":          "state",
	"Bedrooms":       "bedrooms",
	"Bathrooms":      "bathrooms",
}

func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["general"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		name := fieldNames[fe.Field()]
		if name == "" {
			name = strings.ToLower(fe.Field())
		}
		switch fe.Tag() {
		case "required":
			out[name] = "is required"
		case "gt":
			out[name] = "must be selected"
		case "oneof":
			out[name] = "must be one of " + fe.Param()
		default:
			out[name] = "is invalid"
		}
	}
	return out
}
