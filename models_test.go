package realestates_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/realestates-go"
)

var _ = Describe("Grant", func() {
	alice := realestates.Principal{ID: "alice", Groups: []string{"agents"}}

	It("should match users by id", func() {
		Expect(realestates.UserGrant("alice", realestates.ActionRead).Matches(alice)).To(BeTrue())
		Expect(realestates.UserGrant("bob", realestates.ActionRead).Matches(alice)).To(BeFalse())
		Expect(realestates.UserGrant("", realestates.ActionRead).Matches(realestates.Anonymous())).To(BeFalse())
	})

	It("should match groups including the implicit public group", func() {
		Expect(realestates.GroupGrant("agents", realestates.ActionRead).Matches(alice)).To(BeTrue())
		Expect(realestates.GroupGrant(realestates.PublicGroup, realestates.ActionRead).Matches(alice)).To(BeTrue())
		Expect(realestates.GroupGrant(realestates.PublicGroup, realestates.ActionRead).Matches(realestates.Anonymous())).To(BeTrue())
		Expect(realestates.GroupGrant("admin", realestates.ActionRead).Matches(alice)).To(BeFalse())
	})

	It("should allow only the listed actions", func() {
		g := realestates.UserGrant("alice", realestates.ActionRead, realestates.ActionUpdate)

		Expect(g.Allows(realestates.ActionUpdate)).To(BeTrue())
		Expect(g.Allows(realestates.ActionDelete)).To(BeFalse())
	})
})

var _ = Describe("Principal", func() {
	It("should be anonymous without an id", func() {
		Expect(realestates.Anonymous().IsAnonymous()).To(BeTrue())
		Expect(realestates.Principal{ID: "alice"}.IsAnonymous()).To(BeFalse())
	})

	It("should always include the public group once", func() {
		Expect(realestates.Principal{Groups: []string{"agents"}}.AllGroups()).To(Equal([]string{"public", "agents"}))
		Expect(realestates.Anonymous().AllGroups()).To(Equal([]string{"public"}))
	})
})

var _ = Describe("RealEstate", func() {
	var re *realestates.RealEstate

	BeforeEach(func() {
		at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		re = &realestates.RealEstate{
			ID:          "id-1",
			User:        "alice",
			Price:       45000,
			Images:      []string{"img-1"},
			Tags:        []realestates.Tag{{Name: "location:province", Value: "western"}},
			Permissions: []realestates.Grant{realestates.UserGrant("alice", realestates.ActionRead)},
			Visibility:  map[string][]string{"*": {"alice"}},
			CreatedAt:   at,
		}
	})

	It("should be public once the public group may read it", func() {
		Expect(re.IsPublic()).To(BeFalse())

		re.Permissions = append(re.Permissions, realestates.GroupGrant(realestates.PublicGroup, realestates.ActionRead))
		Expect(re.IsPublic()).To(BeTrue())
	})

	It("should clone deeply", func() {
		c := re.Clone()
		c.Images[0] = "changed"
		c.Tags[0].Value = "changed"
		c.Permissions[0].Actions[0] = "changed"
		c.Visibility["*"][0] = "changed"

		Expect(re.Images[0]).To(Equal("img-1"))
		Expect(re.Tags[0].Value).To(Equal("western"))
		Expect(re.Permissions[0].Actions[0]).To(Equal(realestates.ActionRead))
		Expect(re.Visibility["*"][0]).To(Equal("alice"))
	})

	It("should expose fields and elements as a document", func() {
		Expect(re.Values("price")).To(Equal([]any{45000.0}))
		Expect(re.Values("contact")).To(BeEmpty())
		Expect(re.Values("unknown")).To(BeNil())
		Expect(re.Elements("tags")).To(HaveLen(1))
		Expect(re.Elements("tags")[0].Values("name")).To(Equal([]any{"location:province"}))
		Expect(re.Elements("permissions")[0].Values("actions")).To(Equal([]any{realestates.ActionRead}))
	})
})
