package sqlboiler_test

import (
	"time"

	"github.com/aarondl/sqlboiler/v4/queries"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/filter"
	"github.com/nrfta/realestates-go/sqlboiler"
)

var _ = Describe("FetchParamsToQueryMods", func() {
	orderBy := []realestates.OrderBy{
		{Column: "price", Desc: true},
		{Column: "id", Desc: false},
	}

	Describe("Basic Functionality", func() {
		It("should return empty mods for empty params", func() {
			mods, err := sqlboiler.FetchParamsToQueryMods(realestates.FetchParams{})

			Expect(err).ToNot(HaveOccurred())
			Expect(mods).To(HaveLen(0))
		})

		It("should skip a filter that selects everything", func() {
			mods, err := sqlboiler.FetchParamsToQueryMods(realestates.FetchParams{Filter: filter.All{}})

			Expect(err).ToNot(HaveOccurred())
			Expect(mods).To(HaveLen(0))
		})

		It("should add LIMIT mod", func() {
			mods, err := sqlboiler.FetchParamsToQueryMods(realestates.FetchParams{Limit: 10})

			Expect(err).ToNot(HaveOccurred())
			Expect(mods).To(HaveLen(1))
			Expect(modTypeName(mods[0])).To(Equal("qm.limitQueryMod"))
		})

		It("should add ORDER BY mod", func() {
			mods, err := sqlboiler.FetchParamsToQueryMods(realestates.FetchParams{OrderBy: orderBy})

			Expect(err).ToNot(HaveOccurred())
			Expect(mods).To(HaveLen(1))
			Expect(modTypeName(mods[0])).To(Equal("qm.orderByQueryMod"))
		})

		It("should combine all mods together", func() {
			mods, err := sqlboiler.FetchParamsToQueryMods(realestates.FetchParams{
				Filter: filter.Cmp("status", filter.OpEq, "published"),
				Cursor: &realestates.CursorPosition{Values: map[string]any{
					"price": 2000.0,
					"id":    "8b0d6f3c-0000-4000-8000-000000000000",
				}},
				OrderBy: orderBy,
				Limit:   21,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(mods).To(HaveLen(4))
			Expect(modTypeName(mods[0])).To(whereModMatcher())
			Expect(modTypeName(mods[1])).To(whereModMatcher())
			Expect(modTypeName(mods[2])).To(Equal("qm.limitQueryMod"))
			Expect(modTypeName(mods[3])).To(Equal("qm.orderByQueryMod"))
		})
	})

	Describe("Generated SQL", func() {
		It("should page with a per-key operator", func() {
			mods, err := sqlboiler.FetchParamsToQueryMods(realestates.FetchParams{
				Cursor: &realestates.CursorPosition{Values: map[string]any{
					"price": 2000.0,
					"id":    "8b0d6f3c-0000-4000-8000-000000000000",
				}},
				OrderBy: orderBy,
				Limit:   21,
			})
			Expect(err).ToNot(HaveOccurred())

			sql, args := queries.BuildQuery(sqlboiler.NewQuery(mods...))

			Expect(sql).To(ContainSubstring(`FROM "real_estates"`))
			Expect(sql).To(ContainSubstring(`"price" < $1 OR ("price" = $2 AND "id" > $3)`))
			Expect(sql).To(ContainSubstring(`ORDER BY "price" DESC, "id" ASC`))
			Expect(sql).To(ContainSubstring("LIMIT 21"))
			Expect(args).To(Equal([]any{2000.0, 2000.0, "8b0d6f3c-0000-4000-8000-000000000000"}))
		})

		It("should map camel case fields to columns", func() {
			at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			mods, err := sqlboiler.FetchParamsToQueryMods(realestates.FetchParams{
				Cursor: &realestates.CursorPosition{Values: map[string]any{
					"createdAt": at,
					"id":        "x",
				}},
				OrderBy: []realestates.OrderBy{{Column: "createdAt", Desc: true}, {Column: "id"}},
			})
			Expect(err).ToNot(HaveOccurred())

			sql, args := queries.BuildQuery(sqlboiler.NewQuery(mods...))
			Expect(sql).To(ContainSubstring(`"created_at" < $1`))
			Expect(sql).To(ContainSubstring(`ORDER BY "created_at" DESC, "id" ASC`))
			Expect(args[0]).To(Equal(at))
		})
	})

	Describe("Graceful Handling", func() {
		It("should handle nil cursor gracefully", func() {
			mods, err := sqlboiler.FetchParamsToQueryMods(realestates.FetchParams{
				Cursor:  nil,
				OrderBy: orderBy,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(mods).To(HaveLen(1))
		})

		It("should skip the keyset clause when the cursor lacks a key", func() {
			mods, err := sqlboiler.FetchParamsToQueryMods(realestates.FetchParams{
				Cursor:  &realestates.CursorPosition{Values: map[string]any{"price": 1.0}},
				OrderBy: orderBy,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(mods).To(HaveLen(1))
			Expect(modTypeName(mods[0])).To(Equal("qm.orderByQueryMod"))
		})

		It("should reject unknown columns", func() {
			_, err := sqlboiler.FetchParamsToQueryMods(realestates.FetchParams{
				OrderBy: []realestates.OrderBy{{Column: "password"}},
			})

			Expect(err).To(HaveOccurred())
		})
	})
})
