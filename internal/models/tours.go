package models

import (
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DifficultyEasy      = "Easy"
	DifficultyModerate  = "Moderate"
	DifficultyDifficult = "Difficult"
	DifficultyExpert    = "Expert"
)

type Duration struct {
	Days   int `bson:"days" json:"days" validate:"required,min=1"`
	Nights int `bson:"nights" json:"nights" validate:"min=0"`
}

type Location struct {
	Country     string    `bson:"country" json:"country"`
	City        string    `bson:"city" json:"city"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Coordinates []float64 `bson:"coordinates,omitempty" json:"coordinates,omitempty"` // [longitude, latitude]
}

type RouteStop struct {
	Coordinates []float64 `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Day         int       `bson:"day,omitempty" json:"day,omitempty"`
}

type TourImage struct {
	URL       string `bson:"url" json:"url" validate:"required"`
	Caption   string `bson:"caption,omitempty" json:"caption,omitempty"`
	IsPrimary bool   `bson:"is_primary" json:"is_primary"`
}

type Meals struct {
	Breakfast bool `bson:"breakfast" json:"breakfast"`
	Lunch     bool `bson:"lunch" json:"lunch"`
	Dinner    bool `bson:"dinner" json:"dinner"`
}

type ItineraryDay struct {
	Day           int      `bson:"day" json:"day" validate:"required"`
	Title         string   `bson:"title" json:"title" validate:"required"`
	Description   string   `bson:"description" json:"description" validate:"required"`
	Activities    []string `bson:"activities,omitempty" json:"activities,omitempty"`
	Meals         Meals    `bson:"meals" json:"meals"`
	Accommodation string   `bson:"accommodation,omitempty" json:"accommodation,omitempty"`
}

type Guide struct {
	Name       string   `bson:"name" json:"name"`
	Experience string   `bson:"experience,omitempty" json:"experience,omitempty"`
	Languages  []string `bson:"languages,omitempty" json:"languages,omitempty"`
	Photo      string   `bson:"photo,omitempty" json:"photo,omitempty"`
}

// AvailabilityWindow is a bookable date range. Price, when set, overrides the
// tour's base price for departures in the window.
type AvailabilityWindow struct {
	StartDate      time.Time `bson:"start_date" json:"start_date" validate:"required"`
	EndDate        time.Time `bson:"end_date" json:"end_date" validate:"required"`
	AvailableSpots int       `bson:"available_spots" json:"available_spots" validate:"required"`
	Price          float64   `bson:"price,omitempty" json:"price,omitempty"`
}

type Tour struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title            string               `bson:"title" json:"title" validate:"required,max=100"`
	Slug             string               `bson:"slug" json:"slug"`
	Description      string               `bson:"description" json:"description" validate:"required,max=2000"`
	ShortDescription string               `bson:"short_description" json:"short_description" validate:"required,max=200"`
	Price            float64              `bson:"price" json:"price" validate:"min=0"`
	DiscountPrice    float64              `bson:"discount_price,omitempty" json:"discount_price,omitempty" validate:"min=0"`
	Duration         Duration             `bson:"duration" json:"duration"`
	MaxGroupSize     int                  `bson:"max_group_size" json:"max_group_size" validate:"required,min=1"`
	Difficulty       string               `bson:"difficulty" json:"difficulty" validate:"required,oneof=Easy Moderate Difficult Expert"`
	Category         string               `bson:"category" json:"category" validate:"required,oneof=Adventure Cultural Wildlife Beach City Nature Photography Spiritual"`
	Location         Location             `bson:"location" json:"location"`
	StartLocation    RouteStop            `bson:"start_location,omitempty" json:"start_location,omitempty"`
	Locations        []RouteStop          `bson:"locations,omitempty" json:"locations,omitempty"`
	Images           []TourImage          `bson:"images,omitempty" json:"images,omitempty"`
	Itinerary        []ItineraryDay       `bson:"itinerary,omitempty" json:"itinerary,omitempty"`
	Included         []string             `bson:"included,omitempty" json:"included,omitempty"`
	NotIncluded      []string             `bson:"not_included,omitempty" json:"not_included,omitempty"`
	Requirements     []string             `bson:"requirements,omitempty" json:"requirements,omitempty"`
	WhatToBring      []string             `bson:"what_to_bring,omitempty" json:"what_to_bring,omitempty"`
	Guides           []Guide              `bson:"guides,omitempty" json:"guides,omitempty"`
	Availability     []AvailabilityWindow `bson:"availability,omitempty" json:"availability,omitempty"`

	// Written only by the rating recalculation; clients never set these.
	RatingsAverage  float64 `bson:"ratings_average" json:"ratings_average"`
	RatingsQuantity int     `bson:"ratings_quantity" json:"ratings_quantity"`

	IsActive   bool               `bson:"is_active" json:"is_active"`
	IsFeatured bool               `bson:"is_featured" json:"is_featured"`
	Tags       []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedBy  primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

func (t *Tour) ValidateNew() error {
	if err := Validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if t.CreatedBy.IsZero() {
		return fmt.Errorf("%w: tour must have an owner", ErrValidation)
	}
	return nil
}

// RoundRating clamps an average rating to [0,5] and rounds it to one decimal.
func RoundRating(avg float64) float64 {
	if avg < 0 {
		return 0
	}
	if avg > 5 {
		return 5
	}
	return math.Round(avg*10) / 10
}
