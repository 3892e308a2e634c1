package properties

// PropertyForm is the create and edit payload.
type PropertyForm struct {
	Title          string  `json:"title" validate:"required,max=200"`
	Slug           string  `json:"slug" validate:"omitempty,max=200,excludesall=/?#"`
	PropertyTypeID int64   `json:"property_type_id" validate:"gt=0"`
	Status         string  `json:"status" validate:"required,oneof=available sold rented draft"`
	Price          float64 `json:"price" validate:"gte=0"`
	City           string  `json:"city" validate:"required,max=120"`
	State          string  `json:"state" validate:"max=120"`
	Bedrooms       int     `json:"bedrooms" validate:"gte=0,lte=100"`
	Bathrooms      int     `json:"bathrooms" validate:"gte=0,lte=100"`
	IsActive       bool    `json:"is_active"`
	IsFeatured     bool    `json:"is_featured"`
}

// FormFromProperty fills the edit form of p.
func FormFromProperty(p Property) PropertyForm {
	return PropertyForm{
		Title:          p.Title,
		Slug:           p.Slug,
		PropertyTypeID: p.PropertyTypeID,
		Status:         p.Status,
		Price:          p.Price,
		City:           p.City,
		State:          p.State,
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms,
		IsActive:       p.IsActive,
		IsFeatured:     p.IsFeatured,
	}
}
