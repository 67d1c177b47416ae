package sqlboiler

import (
	"encoding/json"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/sqlboiler/v4/types"
	"github.com/friendsofgo/errors"

	"github.com/nrfta/realestates-go"
)

// realEstateRow is the real_estates row as sqlboiler binds it.
type realEstateRow struct {
	ID          string            `boil:"id"`
	User        string            `boil:"user"`
	Status      string            `boil:"status"`
	Type        null.String       `boil:"type"`
	Offer       null.String       `boil:"offer"`
	Price       float64           `boil:"price"`
	Currency    null.String       `boil:"currency"`
	Extent      null.Float64      `boil:"extent"`
	Area        null.Float64      `boil:"area"`
	Bedrooms    null.Int          `boil:"bedrooms"`
	Bathrooms   null.Int          `boil:"bathrooms"`
	Parking     null.Int          `boil:"parking"`
	Location    null.String       `boil:"location"`
	Contact     null.String       `boil:"contact"`
	Description null.String       `boil:"description"`
	Images      types.StringArray `boil:"images"`
	Tags        types.JSON        `boil:"tags"`
	Permissions types.JSON        `boil:"permissions"`
	Visibility  types.JSON        `boil:"visibility"`
	CreatedAt   time.Time         `boil:"created_at"`
	ModifiedAt  time.Time         `boil:"modified_at"`
	UpdatedAt   time.Time         `boil:"updated_at"`
}

func toRow(re *realestates.RealEstate) (*realEstateRow, error) {
	tags, err := jsonOrEmpty(re.Tags, len(re.Tags) == 0, "[]")
	if err != nil {
		return nil, errors.Wrap(err, "encode tags")
	}
	permissions, err := jsonOrEmpty(re.Permissions, len(re.Permissions) == 0, "[]")
	if err != nil {
		return nil, errors.Wrap(err, "encode permissions")
	}
	visibility, err := jsonOrEmpty(re.Visibility, len(re.Visibility) == 0, "{}")
	if err != nil {
		return nil, errors.Wrap(err, "encode visibility")
	}

	images := types.StringArray(re.Images)
	if images == nil {
		images = types.StringArray{}
	}

	return &realEstateRow{
		ID:          re.ID,
		User:        re.User,
		Status:      re.Status,
		Type:        null.NewString(re.Type, re.Type != ""),
		Offer:       null.NewString(re.Offer, re.Offer != ""),
		Price:       re.Price,
		Currency:    null.NewString(re.Currency, re.Currency != ""),
		Extent:      null.NewFloat64(re.Extent, re.Extent != 0),
		Area:        null.NewFloat64(re.Area, re.Area != 0),
		Bedrooms:    null.NewInt(re.Bedrooms, re.Bedrooms != 0),
		Bathrooms:   null.NewInt(re.Bathrooms, re.Bathrooms != 0),
		Parking:     null.NewInt(re.Parking, re.Parking != 0),
		Location:    null.NewString(re.Location, re.Location != ""),
		Contact:     null.NewString(re.Contact, re.Contact != ""),
		Description: null.NewString(re.Description, re.Description != ""),
		Images:      images,
		Tags:        tags,
		Permissions: permissions,
		Visibility:  visibility,
		CreatedAt:   re.CreatedAt,
		ModifiedAt:  re.ModifiedAt,
		UpdatedAt:   re.UpdatedAt,
	}, nil
}

func (r *realEstateRow) model() (*realestates.RealEstate, error) {
	re := &realestates.RealEstate{
		ID:          r.ID,
		User:        r.User,
		Status:      r.Status,
		Type:        r.Type.String,
		Offer:       r.Offer.String,
		Price:       r.Price,
		Currency:    r.Currency.String,
		Extent:      r.Extent.Float64,
		Area:        r.Area.Float64,
		Bedrooms:    r.Bedrooms.Int,
		Bathrooms:   r.Bathrooms.Int,
		Parking:     r.Parking.Int,
		Location:    r.Location.String,
		Contact:     r.Contact.String,
		Description: r.Description.String,
		CreatedAt:   r.CreatedAt.UTC(),
		ModifiedAt:  r.ModifiedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if len(r.Images) > 0 {
		re.Images = []string(r.Images)
	}
	if err := r.Tags.Unmarshal(&re.Tags); err != nil {
		return nil, errors.Wrapf(err, "decode tags of %s", r.ID)
	}
	if err := r.Permissions.Unmarshal(&re.Permissions); err != nil {
		return nil, errors.Wrapf(err, "decode permissions of %s", r.ID)
	}
	if err := r.Visibility.Unmarshal(&re.Visibility); err != nil {
		return nil, errors.Wrapf(err, "decode visibility of %s", r.ID)
	}
	if len(re.Tags) == 0 {
		re.Tags = nil
	}
	if len(re.Permissions) == 0 {
		re.Permissions = nil
	}
	if len(re.Visibility) == 0 {
		re.Visibility = nil
	}
	return re, nil
}

// values lists the row in allColumns order.
func (r *realEstateRow) values() []any {
	return []any{
		r.ID, r.User, r.Status, r.Type, r.Offer, r.Price, r.Currency, r.Extent, r.Area,
		r.Bedrooms, r.Bathrooms, r.Parking, r.Location, r.Contact, r.Description,
		r.Images, r.Tags, r.Permissions, r.Visibility, r.CreatedAt, r.ModifiedAt, r.UpdatedAt,
	}
}

func jsonOrEmpty(v any, empty bool, fallback string) (types.JSON, error) {
	if empty {
		return types.JSON(fallback), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return types.JSON(data), nil
}
