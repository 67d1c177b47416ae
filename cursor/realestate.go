package cursor

import "github.com/nrfta/realestates-go"

// RealEstates is the order schema for real estate listings. Clients may sort
// by price, createdAt and updatedAt; id ASC is always appended. Without a
// client sort the newest records come first.
var RealEstates = NewSchema[*realestates.RealEstate]().
	Field("price", "p", func(r *realestates.RealEstate) any { return r.Price }).
	Field("createdAt", "c", func(r *realestates.RealEstate) any { return r.CreatedAt }).
	Field("updatedAt", "u", func(r *realestates.RealEstate) any { return r.UpdatedAt }).
	FixedField("id", ASC, "i", func(r *realestates.RealEstate) any { return r.ID }).
	WithDefault(realestates.OrderBy{Column: "createdAt", Desc: true})
