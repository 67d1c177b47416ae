package mongo_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/filter"
	"github.com/nrfta/realestates-go/mongo"
)

var _ = Describe("Translate", func() {
	DescribeTable("nodes",
		func(node filter.Node, want bson.M) {
			got, err := mongo.Translate(node)
			Expect(err).ToNot(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("all", filter.All{}, bson.M{}),
		Entry("eq", filter.Cmp("status", filter.OpEq, "published"),
			bson.M{"status": bson.M{"$eq": "published"}}),
		Entry("id maps to _id", filter.Cmp("id", filter.OpGt, "x"),
			bson.M{"_id": bson.M{"$gt": "x"}}),
		Entry("in", filter.Cmp("offer", filter.OpIn, []any{"sell"}),
			bson.M{"offer": bson.M{"$in": bson.A{"sell"}}}),
		Entry("nor", filter.Nor{Nodes: []filter.Node{filter.Cmp("type", filter.OpEq, "land")}},
			bson.M{"$nor": bson.A{bson.M{"type": bson.M{"$eq": "land"}}}}),
		Entry("empty or", filter.Or{}, bson.M{"_id": bson.M{"$in": bson.A{}}}),
		Entry("tags", filter.ElemMatch{Field: "tags", Node: filter.Conjoin(
			filter.Cmp("name", filter.OpEq, "location:province"),
			filter.Cmp("value", filter.OpEq, "western"),
		)}, bson.M{"tags": bson.M{"$elemMatch": bson.M{"$and": bson.A{
			bson.M{"name": bson.M{"$eq": "location:province"}},
			bson.M{"value": bson.M{"$eq": "western"}},
		}}}}),
		Entry("element id stays", filter.ElemMatch{Field: "permissions", Node: filter.Cmp("id", filter.OpEq, "x")},
			bson.M{"permissions": bson.M{"$elemMatch": bson.M{"id": bson.M{"$eq": "x"}}}}),
	)

	It("should reject non-list operands for $in", func() {
		_, err := mongo.Translate(filter.Cmp("offer", filter.OpIn, "sell"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("FindQuery", func() {
	It("should AND the keyset boundary onto the filter", func() {
		query, err := mongo.FindQuery(realestates.FetchParams{
			Filter:  filter.Cmp("status", filter.OpEq, "published"),
			OrderBy: []realestates.OrderBy{{Column: "price", Desc: true}, {Column: "id"}},
			Cursor: &realestates.CursorPosition{Values: map[string]any{
				"price": 1000.0,
				"id":    "x",
			}},
		})

		Expect(err).ToNot(HaveOccurred())
		Expect(query).To(Equal(bson.M{"$and": bson.A{
			bson.M{"status": bson.M{"$eq": "published"}},
			bson.M{"$or": bson.A{
				bson.M{"price": bson.M{"$lt": 1000.0}},
				bson.M{"$and": bson.A{
					bson.M{"price": bson.M{"$eq": 1000.0}},
					bson.M{"_id": bson.M{"$gt": "x"}},
				}},
			}},
		}}))
	})
})

var _ = Describe("Sort", func() {
	It("should keep key order and direction", func() {
		Expect(mongo.Sort([]realestates.OrderBy{
			{Column: "updatedAt", Desc: true},
			{Column: "id"},
		})).To(Equal(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}}))
	})
})
