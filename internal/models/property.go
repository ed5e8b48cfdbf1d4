package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PropertyType is the closed set of listing categories.
type PropertyType string

const (
	Residential PropertyType = "Residential"
	Commercial  PropertyType = "Commercial"
	Industrial  PropertyType = "Industrial"
	Land        PropertyType = "Land"
)

// PropertyTypes lists every valid PropertyType in display order.
var PropertyTypes = []PropertyType{Residential, Commercial, Industrial, Land}

func (t PropertyType) Valid() bool {
	for _, known := range PropertyTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Property is the single catalog record. ImagePath is nil when no image is attached.
type Property struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"propertyName" bson:"propertyName"`
	Type        PropertyType       `json:"propertyType" bson:"propertyType"`
	Location    string             `json:"propertyLocation" bson:"propertyLocation"`
	Price       float64            `json:"propertyPrice" bson:"propertyPrice"`
	Description string             `json:"propertyDescription" bson:"propertyDescription"`
	ImagePath   *string            `json:"propertyImage" bson:"propertyImage"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PropertyInput carries the fields required to create a property.
type PropertyInput struct {
	Name        string   `json:"propertyName" form:"propertyName" validate:"required"`
	Type        string   `json:"propertyType" form:"propertyType" validate:"required,oneof=Residential Commercial Industrial Land"`
	Location    string   `json:"propertyLocation" form:"propertyLocation" validate:"required"`
	Price       *float64 `json:"propertyPrice" form:"propertyPrice" validate:"required,gte=0"`
	Description string   `json:"propertyDescription" form:"propertyDescription" validate:"required"`
}

// PropertyPatch carries a partial update; nil fields are left untouched.
type PropertyPatch struct {
	Name        *string  `json:"propertyName" form:"propertyName" validate:"omitempty,min=1"`
	Type        *string  `json:"propertyType" form:"propertyType" validate:"omitempty,oneof=Residential Commercial Industrial Land"`
	Location    *string  `json:"propertyLocation" form:"propertyLocation" validate:"omitempty,min=1"`
	Price       *float64 `json:"propertyPrice" form:"propertyPrice" validate:"omitempty,gte=0"`
	Description *string  `json:"propertyDescription" form:"propertyDescription" validate:"omitempty,min=1"`
}

func (p *PropertyPatch) IsEmpty() bool {
	return p.Name == nil && p.Type == nil && p.Location == nil && p.Price == nil && p.Description == nil
}

// Apply copies the set fields of the patch onto property.
func (p *PropertyPatch) Apply(property *Property) {
	if p.Name != nil {
		property.Name = *p.Name
	}
	if p.Type != nil {
		property.Type = PropertyType(*p.Type)
	}
	if p.Location != nil {
		property.Location = *p.Location
	}
	if p.Price != nil {
		property.Price = *p.Price
	}
	if p.Description != nil {
		property.Description = *p.Description
	}
}

// ImageUpload is an uploaded image held in memory; uploads are capped well below a megabyte.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// PropertyPage is one page of a filtered listing.
type PropertyPage struct {
	Properties []Property `json:"properties"`
	TotalPages int        `json:"totalPages"`
	TotalCount int64      `json:"totalCount"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	Next       *string    `json:"next,omitempty"`
	Prev       *string    `json:"prev,omitempty"`
}
