package validators

import (
	"property-catalog/internal/models"
)

type PropertyValidator interface {
	ValidateCreate(input *models.PropertyInput) error
	ValidateUpdate(patch *models.PropertyPatch, image *models.ImageUpload) error
	ValidateImage(image *models.ImageUpload) error
}
