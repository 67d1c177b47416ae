package mongo

import (
	"time"

	"github.com/nrfta/realestates-go"
)

// document is the stored shape. The id lives in _id and never leaves the
// package under that name.
type document struct {
	ID          string              `bson:"_id"`
	User        string              `bson:"user"`
	Status      string              `bson:"status"`
	Type        string              `bson:"type,omitempty"`
	Offer       string              `bson:"offer,omitempty"`
	Price       float64             `bson:"price"`
	Currency    string              `bson:"currency,omitempty"`
	Extent      float64             `bson:"extent,omitempty"`
	Area        float64             `bson:"area,omitempty"`
	Bedrooms    int                 `bson:"bedrooms,omitempty"`
	Bathrooms   int                 `bson:"bathrooms,omitempty"`
	Parking     int                 `bson:"parking,omitempty"`
	Location    string              `bson:"location,omitempty"`
	Contact     string              `bson:"contact,omitempty"`
	Description string              `bson:"description,omitempty"`
	Images      []string            `bson:"images,omitempty"`
	Tags        []realestates.Tag   `bson:"tags,omitempty"`
	Permissions []realestates.Grant `bson:"permissions,omitempty"`
	Visibility  map[string][]string `bson:"visibility,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt"`
	ModifiedAt  time.Time           `bson:"modifiedAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

func toDocument(re *realestates.RealEstate) *document {
	return &document{
		ID:          re.ID,
		User:        re.User,
		Status:      re.Status,
		Type:        re.Type,
		Offer:       re.Offer,
		Price:       re.Price,
		Currency:    re.Currency,
		Extent:      re.Extent,
		Area:        re.Area,
		Bedrooms:    re.Bedrooms,
		Bathrooms:   re.Bathrooms,
		Parking:     re.Parking,
		Location:    re.Location,
		Contact:     re.Contact,
		Description: re.Description,
		Images:      re.Images,
		Tags:        re.Tags,
		Permissions: re.Permissions,
		Visibility:  re.Visibility,
		CreatedAt:   re.CreatedAt,
		ModifiedAt:  re.ModifiedAt,
		UpdatedAt:   re.UpdatedAt,
	}
}

func (d *document) model() *realestates.RealEstate {
	return &realestates.RealEstate{
		ID:          d.ID,
		User:        d.User,
		Status:      d.Status,
		Type:        d.Type,
		Offer:       d.Offer,
		Price:       d.Price,
		Currency:    d.Currency,
		Extent:      d.Extent,
		Area:        d.Area,
		Bedrooms:    d.Bedrooms,
		Bathrooms:   d.Bathrooms,
		Parking:     d.Parking,
		Location:    d.Location,
		Contact:     d.Contact,
		Description: d.Description,
		Images:      d.Images,
		Tags:        d.Tags,
		Permissions: d.Permissions,
		Visibility:  d.Visibility,
		CreatedAt:   d.CreatedAt.UTC(),
		ModifiedAt:  d.ModifiedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}
