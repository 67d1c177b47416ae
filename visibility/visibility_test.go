package visibility_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/filter"
	"github.com/nrfta/realestates-go/visibility"
)

var _ = Describe("Visibility", func() {
	var (
		owner     realestates.Principal
		peer      realestates.Principal
		member    realestates.Principal
		admin     realestates.Principal
		anonymous realestates.Principal
		private   *realestates.RealEstate
		public    *realestates.RealEstate
		shared    *realestates.RealEstate
		grouped   *realestates.RealEstate
	)

	BeforeEach(func() {
		owner = realestates.Principal{ID: "owner"}
		peer = realestates.Principal{ID: "peer"}
		member = realestates.Principal{ID: "member", Groups: []string{"agents"}}
		admin = realestates.Principal{ID: "root", Groups: []string{realestates.AdminGroup}, Admin: true}
		anonymous = realestates.Anonymous()

		ownerGrant := realestates.UserGrant("owner", "read", "update", "delete")
		private = &realestates.RealEstate{ID: "1", User: "owner", Permissions: []realestates.Grant{ownerGrant}}
		public = &realestates.RealEstate{ID: "2", User: "owner", Permissions: []realestates.Grant{
			ownerGrant, realestates.GroupGrant(realestates.PublicGroup, "read"),
		}}
		shared = &realestates.RealEstate{ID: "3", User: "owner", Permissions: []realestates.Grant{
			ownerGrant, realestates.UserGrant("peer", "read"),
		}}
		grouped = &realestates.RealEstate{ID: "4", User: "owner", Permissions: []realestates.Grant{
			ownerGrant, realestates.GroupGrant("agents", "read"),
		}}
	})

	// The predicate and the pure check must always agree.
	DescribeTable("Predicate and Visible",
		func(p *realestates.Principal, re **realestates.RealEstate, expected bool) {
			Expect(visibility.Visible(*p, *re, realestates.ActionRead)).To(Equal(expected))
			Expect(filter.Match(visibility.Predicate(*p, realestates.ActionRead), *re)).To(Equal(expected))
		},
		Entry("owner sees own private record", &owner, &private, true),
		Entry("peer does not see a private record", &peer, &private, false),
		Entry("anonymous does not see a private record", &anonymous, &private, false),
		Entry("peer sees a public record", &peer, &public, true),
		Entry("anonymous sees a public record", &anonymous, &public, true),
		Entry("peer sees a record shared with them", &peer, &shared, true),
		Entry("member sees a record shared with their group", &member, &grouped, true),
		Entry("peer does not see a group-shared record", &peer, &grouped, false),
		Entry("admin sees everything", &admin, &private, true),
	)

	It("should not allow actions the grant lacks", func() {
		Expect(visibility.Visible(peer, shared, realestates.ActionUpdate)).To(BeFalse())
		Expect(visibility.Visible(owner, shared, realestates.ActionUpdate)).To(BeTrue())
	})

	Describe("Scope", func() {
		It("should AND the predicate onto the client filter", func() {
			spec := &realestates.QuerySpec{Filter: filter.Cmp("price", filter.OpLte, 10.0), Count: 20}

			scoped := visibility.Scope(peer, spec)

			and, ok := scoped.Filter.(filter.And)
			Expect(ok).To(BeTrue())
			Expect(and.Nodes[0]).To(Equal(filter.Cmp("price", filter.OpLte, 10.0)))
			Expect(spec.Filter).To(Equal(filter.Cmp("price", filter.OpLte, 10.0)))
		})

		It("should not let a client filter widen visibility", func() {
			spec := &realestates.QuerySpec{Filter: filter.Cmp("user", filter.OpEq, "owner"), Count: 20}

			scoped := visibility.Scope(peer, spec)

			Expect(filter.Match(scoped.Filter, private)).To(BeFalse())
			Expect(filter.Match(scoped.Filter, shared)).To(BeTrue())
		})

		It("should leave admin queries unchanged", func() {
			spec := &realestates.QuerySpec{Filter: filter.Cmp("status", filter.OpEq, "reviewing"), Count: 20}

			scoped := visibility.Scope(admin, spec)

			Expect(scoped.Filter).To(Equal(spec.Filter))
		})
	})
})
