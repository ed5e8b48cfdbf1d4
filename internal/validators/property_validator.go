package validators

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	apperrors "property-catalog/internal/errors"
	"property-catalog/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

const imageField = "propertyImage"

type propertyValidator struct {
	validate     *validator.Validate
	maxImageSize int64
}

func NewPropertyValidator(maxImageSize int64) PropertyValidator {
	v := validator.New()
	// report fields by their wire names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &propertyValidator{validate: v, maxImageSize: maxImageSize}
}

func (v *propertyValidator) ValidateCreate(input *models.PropertyInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Type = strings.TrimSpace(input.Type)
	input.Location = strings.TrimSpace(input.Location)
	input.Description = strings.TrimSpace(input.Description)

	if err := finitePrice(input.Price); err != nil {
		return err
	}
	return v.structError(v.validate.Struct(input))
}

func (v *propertyValidator) ValidateUpdate(patch *models.PropertyPatch, image *models.ImageUpload) error {
	for _, field := range []*string{patch.Name, patch.Type, patch.Location, patch.Description} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
	if patch.IsEmpty() && image == nil {
		return apperrors.NewValidationError("", "at least one field or a replacement image is required")
	}
	if err := finitePrice(patch.Price); err != nil {
		return err
	}
	return v.structError(v.validate.Struct(patch))
}

// finitePrice rejects NaN and the infinities, which the form binder parses
// from "NaN" and "Inf" and which JSON cannot encode.
func finitePrice(price *float64) error {
	if price != nil && (math.IsNaN(*price) || math.IsInf(*price, 0)) {
		return apperrors.NewValidationError("propertyPrice", "must be a number")
	}
	return nil
}

// ValidateImage enforces the size ceiling and requires both the declared and the sniffed type to be images.
func (v *propertyValidator) ValidateImage(image *models.ImageUpload) error {
	if image == nil {
		return nil
	}
	size := image.Size
	if int64(len(image.Data)) > size {
		size = int64(len(image.Data))
	}
	if size > v.maxImageSize {
		return apperrors.NewValidationError(imageField,
			fmt.Sprintf("size %d bytes exceeds the %d byte limit", size, v.maxImageSize))
	}
	if len(image.Data) == 0 {
		return apperrors.NewValidationError(imageField, "is empty")
	}

	declared := strings.ToLower(strings.TrimSpace(image.ContentType))
	if !strings.HasPrefix(declared, "image/") {
		return apperrors.NewValidationError(imageField,
			fmt.Sprintf("type %q is not an image media type", image.ContentType))
	}
	if detected := mimetype.Detect(image.Data); !strings.HasPrefix(detected.String(), "image/") {
		return apperrors.NewValidationError(imageField,
			fmt.Sprintf("type: content is %s, not an image", detected.String()))
	}
	return nil
}

func (v *propertyValidator) structError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewValidationError("", err.Error())
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return apperrors.NewValidationError(fe.Field(), "is required")
	case "oneof":
		return apperrors.NewValidationError(fe.Field(),
			fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", ")))
	case "gte":
		return apperrors.NewValidationError(fe.Field(), "must not be negative")
	case "min":
		return apperrors.NewValidationError(fe.Field(), "must not be empty")
	default:
		return apperrors.NewValidationError(fe.Field(), fmt.Sprintf("failed %s validation", fe.Tag()))
	}
}
