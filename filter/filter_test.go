package filter_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/realestates-go/filter"
)

var _ = Describe("Conjoin", func() {
	It("should return All when nothing is given", func() {
		Expect(filter.Conjoin()).To(Equal(filter.All{}))
		Expect(filter.Conjoin(nil, filter.All{})).To(Equal(filter.All{}))
	})

	It("should unwrap a single node", func() {
		leaf := filter.Cmp("price", filter.OpGt, 10)
		Expect(filter.Conjoin(leaf)).To(Equal(leaf))
	})

	It("should flatten nested Ands", func() {
		a := filter.Cmp("price", filter.OpGt, 10)
		b := filter.Cmp("status", filter.OpEq, "published")
		c := filter.Cmp("user", filter.OpEq, "u1")

		node := filter.Conjoin(a, filter.And{Nodes: []filter.Node{b, filter.All{}, c}})

		Expect(node).To(Equal(filter.And{Nodes: []filter.Node{a, b, c}}))
	})
})

var _ = Describe("Disjoin", func() {
	It("should return None for no nodes", func() {
		Expect(filter.Disjoin()).To(Equal(filter.None{}))
	})

	It("should collapse to All when any branch is All", func() {
		Expect(filter.Disjoin(filter.Cmp("a", filter.OpEq, 1), filter.All{})).To(Equal(filter.All{}))
	})
})

var _ = Describe("Match", func() {
	var d doc

	BeforeEach(func() {
		d = doc{
			"user":      "u1",
			"price":     45000.0,
			"bedrooms":  3,
			"status":    "published",
			"createdAt": time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			"images":    []any{"img1", "img2"},
			"tags": []doc{
				{"name": "location:locations:postal", "value": "00700"},
				{"name": "location:locations:district", "value": "Colombo"},
			},
			"permissions": []doc{
				{"user": "u1", "actions": []any{"read", "update", "delete"}},
				{"group": "public", "actions": []any{"read"}},
			},
		}
	})

	DescribeTable("comparison leaves",
		func(node filter.Node, expected bool) {
			Expect(filter.Match(node, d)).To(Equal(expected))
		},
		Entry("eq string", filter.Cmp("user", filter.OpEq, "u1"), true),
		Entry("eq mismatch", filter.Cmp("user", filter.OpEq, "u2"), false),
		Entry("ne", filter.Cmp("user", filter.OpNe, "u2"), true),
		Entry("lte float", filter.Cmp("price", filter.OpLte, 50000.0), true),
		Entry("gt float", filter.Cmp("price", filter.OpGt, 50000.0), false),
		Entry("int vs float", filter.Cmp("bedrooms", filter.OpGte, 3.0), true),
		Entry("time vs RFC3339 string", filter.Cmp("createdAt", filter.OpLt, "2024-02-01T00:00:00Z"), true),
		Entry("mismatched kinds", filter.Cmp("price", filter.OpEq, "45000"), false),
		Entry("in", filter.Cmp("status", filter.OpIn, []any{"editing", "published"}), true),
		Entry("nin", filter.Cmp("status", filter.OpNin, []any{"published"}), false),
		Entry("array field eq any element", filter.Cmp("images", filter.OpEq, "img2"), true),
		Entry("array field ne", filter.Cmp("images", filter.OpNe, "img2"), false),
		Entry("missing field eq nil", filter.Cmp("contact", filter.OpEq, nil), true),
		Entry("missing field lt", filter.Cmp("extent", filter.OpLt, 10.0), false),
	)

	It("should AND-combine tag element matches", func() {
		postal := filter.ElemMatch{Field: "tags", Node: filter.Conjoin(
			filter.Cmp("name", filter.OpEq, "location:locations:postal"),
			filter.Cmp("value", filter.OpEq, "00700"),
		)}
		district := filter.ElemMatch{Field: "tags", Node: filter.Conjoin(
			filter.Cmp("name", filter.OpEq, "location:locations:district"),
			filter.Cmp("value", filter.OpEq, "Colombo"),
		)}
		wrong := filter.ElemMatch{Field: "tags", Node: filter.Conjoin(
			filter.Cmp("name", filter.OpEq, "location:locations:postal"),
			filter.Cmp("value", filter.OpEq, "Colombo"),
		)}

		Expect(filter.Match(filter.Conjoin(postal, district), d)).To(BeTrue())
		Expect(filter.Match(filter.Conjoin(postal, wrong), d)).To(BeFalse())
	})

	It("should evaluate Or and Nor over grants", func() {
		publicRead := filter.ElemMatch{Field: "permissions", Node: filter.Conjoin(
			filter.Cmp("group", filter.OpEq, "public"),
			filter.Cmp("actions", filter.OpIn, []any{"read"}),
		)}

		Expect(filter.Match(filter.Or{Nodes: []filter.Node{publicRead}}, d)).To(BeTrue())
		Expect(filter.Match(filter.Nor{Nodes: []filter.Node{publicRead}}, d)).To(BeFalse())
	})

	It("should treat All and None as constants", func() {
		Expect(filter.Match(filter.All{}, d)).To(BeTrue())
		Expect(filter.Match(filter.None{}, d)).To(BeFalse())
		Expect(filter.Match(nil, d)).To(BeTrue())
	})
})

var _ = Describe("CompareValues", func() {
	It("should order booleans false before true", func() {
		cmp, ok := filter.CompareValues(false, true)
		Expect(ok).To(BeTrue())
		Expect(cmp).To(Equal(-1))
	})

	It("should refuse mixed kinds", func() {
		_, ok := filter.CompareValues("a", 1)
		Expect(ok).To(BeFalse())
	})
})
