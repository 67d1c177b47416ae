package executor_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/executor"
	"github.com/nrfta/realestates-go/memory"
)

func status(err error) int {
	e, ok := realestates.AsError(err)
	Expect(ok).To(BeTrue(), "expected a client error, got %v", err)
	return e.Status
}

var _ = Describe("Executor", func() {
	var (
		ctx     context.Context
		store   *memory.Store
		exec    *executor.Executor
		records []*realestates.RealEstate
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = memory.New()
		records = seed(store, 60)
		exec = executor.New(store)
	})

	Describe("Find", func() {
		It("should return the default page with a next link only", func() {
			res, err := exec.Find(ctx, owner, "", base)

			Expect(err).ToNot(HaveOccurred())
			Expect(res.Page.Nodes).To(HaveLen(20))
			Expect(res.Page.Nodes[0]["id"]).To(Equal(records[59].ID))
			Expect(res.Page.Metadata.ItemsExamined).To(Equal(21))

			pages := links(res.Link)
			Expect(pages).To(HaveKey("next"))
			Expect(pages).ToNot(HaveKey("prev"))
		})

		It("should walk forwards and backwards by price", func() {
			first, err := exec.Find(ctx, owner, `{"sort":{"price":-1}}`, base)
			Expect(err).ToNot(HaveOccurred())
			Expect(first.Page.Nodes).To(HaveLen(20))
			for i := 1; i < len(first.Page.Nodes); i++ {
				Expect(first.Page.Nodes[i-1]["price"]).To(BeNumerically(">", first.Page.Nodes[i]["price"]))
			}

			second, err := exec.Find(ctx, owner, links(first.Link)["next"], base)
			Expect(err).ToNot(HaveOccurred())
			Expect(second.Page.Nodes).To(HaveLen(20))
			Expect(links(second.Link)).To(HaveKey("prev"))
			Expect(links(second.Link)).To(HaveKey("next"))

			last, err := exec.Find(ctx, owner, links(second.Link)["next"], base)
			Expect(err).ToNot(HaveOccurred())
			Expect(last.Page.Nodes).To(HaveLen(20))
			Expect(links(last.Link)).ToNot(HaveKey("next"))

			back, err := exec.Find(ctx, owner, links(second.Link)["prev"], base)
			Expect(err).ToNot(HaveOccurred())
			Expect(idsOf(back.Page.Nodes)).To(Equal(idsOf(first.Page.Nodes)))
			Expect(back.Page.Metadata.Direction).To(Equal(realestates.Prev))
			Expect(links(back.Link)).ToNot(HaveKey("prev"))
		})

		It("should repeat query, sort, fields and count in links", func() {
			res, err := exec.Find(ctx, owner,
				`{"query":{"price":{"$gte":5000}},"sort":{"price":1,"createdAt":-1},"fields":{"price":1},"count":5}`, base)
			Expect(err).ToNot(HaveOccurred())

			var data map[string]json.RawMessage
			Expect(json.Unmarshal([]byte(links(res.Link)["next"]), &data)).To(Succeed())
			Expect(data).To(HaveKey("cursor"))
			Expect(string(data["query"])).To(Equal(`{"price":{"$gte":5000}}`))
			Expect(string(data["sort"])).To(Equal(`{"price":1,"createdAt":-1}`))
			Expect(string(data["fields"])).To(Equal(`{"price":1}`))
			Expect(string(data["count"])).To(Equal(`5`))
		})

		It("should project requested fields plus identifiers and audit fields", func() {
			res, err := exec.Find(ctx, owner, `{"fields":{"price":1}}`, base)
			Expect(err).ToNot(HaveOccurred())

			for _, node := range res.Page.Nodes {
				Expect(node).To(HaveLen(5))
				Expect(node).To(HaveKey("price"))
				Expect(node).To(HaveKey("id"))
				Expect(node).To(HaveKey("user"))
				Expect(node).To(HaveKey("createdAt"))
				Expect(node).To(HaveKey("modifiedAt"))
			}
		})

		It("should only list public records to anonymous callers", func() {
			res, err := exec.Find(ctx, anyone, `{"count":100}`, base)
			Expect(err).ToNot(HaveOccurred())

			Expect(res.Page.Nodes).To(HaveLen(20))
			for _, node := range res.Page.Nodes {
				re, err := store.FindOne(ctx, node["id"].(string))
				Expect(err).ToNot(HaveOccurred())
				Expect(re.IsPublic()).To(BeTrue())
			}
		})

		It("should not let a client filter widen visibility", func() {
			res, err := exec.Find(ctx, other,
				`{"query":{"$or":[{"user":"owner"},{"user":"other"}]},"count":100}`, base)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Page.Nodes).To(HaveLen(20))
		})

		It("should list everything to admins", func() {
			res, err := exec.Find(ctx, admin, `{"count":100}`, base)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Page.Nodes).To(HaveLen(60))
			Expect(res.Link).To(BeEmpty())
		})

		It("should AND tag filters", func() {
			res, err := exec.Find(ctx, owner,
				`{"query":{"tags":[{"name":"location:province","value":"western"},{"name":"location:district","value":"colombo"}]}}`, base)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Page.Nodes).To(BeEmpty())
			Expect(res.Link).To(BeEmpty())
		})

		DescribeTable("rejections",
			func(raw string, code int) {
				_, err := exec.Find(ctx, admin, raw, base)
				Expect(status(err)).To(Equal(code))
			},
			Entry("contact filter", `{"query":{"contact":"contact-1"}}`, http.StatusBadRequest),
			Entry("boolean sort", `{"sort":{"price":true}}`, http.StatusBadRequest),
			Entry("count 101", `{"count":101}`, http.StatusBadRequest),
			Entry("garbage cursor", `{"cursor":"garbage"}`, http.StatusBadRequest),
			Entry("operator tag", `{"query":{"tags":{"$province":"western"}}}`, http.StatusUnprocessableEntity),
		)

		It("should reject a cursor whose id is not a uuid", func() {
			token := base64.RawURLEncoding.EncodeToString([]byte(`{"d":"n","v":{"c":"2024-01-01T00:00:00Z","i":"abc"}}`))

			_, err := exec.Find(ctx, owner, `{"cursor":"`+token+`"}`, base)
			Expect(status(err)).To(Equal(http.StatusBadRequest))
		})

		It("should reject a cursor minted for another sort", func() {
			res, err := exec.Find(ctx, owner, `{"sort":{"price":-1}}`, base)
			Expect(err).ToNot(HaveOccurred())

			var data map[string]any
			Expect(json.Unmarshal([]byte(links(res.Link)["next"]), &data)).To(Succeed())
			delete(data, "sort")
			raw, _ := json.Marshal(data)

			_, err = exec.Find(ctx, owner, string(raw), base)
			Expect(status(err)).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("FindOne", func() {
		It("should return a visible record", func() {
			re, err := exec.FindOne(ctx, anyone, records[0].ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(re.ID).To(Equal(records[0].ID))
		})

		DescribeTable("not found",
			func(p realestates.Principal, id func() string) {
				_, err := exec.FindOne(ctx, p, id())
				Expect(status(err)).To(Equal(http.StatusNotFound))
			},
			Entry("malformed id", owner, func() string { return "undefined" }),
			Entry("unknown id", owner, func() string { return "00000000-0000-4000-8000-999999999999" }),
			Entry("private to anonymous", anyone, func() string { return "00000000-0000-4000-8000-000000000001" }),
			Entry("private to another user", other, func() string { return "00000000-0000-4000-8000-000000000002" }),
		)

		It("should let a granted user read", func() {
			re := records[1].Clone()
			re.Permissions = append(re.Permissions, realestates.UserGrant(other.ID, realestates.ActionRead))
			Expect(store.Update(ctx, re)).To(Succeed())

			_, err := exec.FindOne(ctx, other, re.ID)
			Expect(err).ToNot(HaveOccurred())

			_, err = exec.Resolve(ctx, other, re.ID, realestates.ActionUpdate)
			Expect(status(err)).To(Equal(http.StatusNotFound))
		})

		It("should never write", func() {
			before, _ := store.FindOne(ctx, records[3].ID)
			_, err := exec.FindOne(ctx, owner, records[3].ID)
			Expect(err).ToNot(HaveOccurred())
			_, err = exec.Find(ctx, owner, "", base)
			Expect(err).ToNot(HaveOccurred())

			after, _ := store.FindOne(ctx, records[3].ID)
			Expect(after).To(Equal(before))
			Expect(store.Len()).To(Equal(60))
		})
	})
})

var _ = Describe("Project", func() {
	It("should return the full representation without fields", func() {
		re := &realestates.RealEstate{ID: "x", User: "u", Price: 10, Images: []string{"i"}}

		out := executor.Project(re, nil)
		Expect(out).To(HaveKeyWithValue("images", []string{"i"}))
		Expect(out).ToNot(HaveKey("contact"))
		for _, key := range []string{"id", "user", "price", "createdAt", "modifiedAt", "updatedAt"} {
			Expect(out).To(HaveKey(key))
		}
	})

	It("should ignore unknown fields", func() {
		re := &realestates.RealEstate{ID: "x", User: "u"}

		out := executor.Project(re, []string{"description"})
		Expect(out).To(HaveLen(4))
	})
})
