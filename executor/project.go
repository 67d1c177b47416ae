package executor

import (
	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/query"
)

// Project returns the client representation of re restricted to fields.
// Identifier and audit fields are always present. No fields means the full
// representation.
func Project(re *realestates.RealEstate, fields []string) map[string]any {
	full := Represent(re)
	if len(fields) == 0 {
		return full
	}

	out := make(map[string]any, len(fields)+len(query.AlwaysProjected))
	for _, f := range query.AlwaysProjected {
		out[f] = full[f]
	}
	for _, f := range fields {
		if v, ok := full[f]; ok {
			out[f] = v
		}
	}
	return out
}

// Represent is the full public representation of re. Empty optional fields
// are omitted the way the JSON encoding of RealEstate omits them.
func Represent(re *realestates.RealEstate) map[string]any {
	m := map[string]any{
		"id":         re.ID,
		"user":       re.User,
		"status":     re.Status,
		"type":       re.Type,
		"offer":      re.Offer,
		"price":      re.Price,
		"currency":   re.Currency,
		"createdAt":  re.CreatedAt,
		"modifiedAt": re.ModifiedAt,
		"updatedAt":  re.UpdatedAt,
	}
	put := func(key string, v any, empty bool) {
		if !empty {
			m[key] = v
		}
	}
	put("extent", re.Extent, re.Extent == 0)
	put("area", re.Area, re.Area == 0)
	put("bedrooms", re.Bedrooms, re.Bedrooms == 0)
	put("bathrooms", re.Bathrooms, re.Bathrooms == 0)
	put("parking", re.Parking, re.Parking == 0)
	put("location", re.Location, re.Location == "")
	put("contact", re.Contact, re.Contact == "")
	put("description", re.Description, re.Description == "")
	put("images", re.Images, len(re.Images) == 0)
	put("tags", re.Tags, len(re.Tags) == 0)
	put("permissions", re.Permissions, len(re.Permissions) == 0)
	put("visibility", re.Visibility, len(re.Visibility) == 0)
	return m
}
