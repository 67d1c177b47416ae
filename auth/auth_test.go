package auth_test

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/auth"
)

func unauthorized(err error) bool {
	e, ok := realestates.AsError(err)
	return ok && e.Status == http.StatusUnauthorized
}

var _ = Describe("Authenticator", func() {
	var a *auth.Authenticator

	BeforeEach(func() {
		a = auth.New("s3cr3t", "realestates")
	})

	It("should treat a missing header as anonymous", func() {
		p, err := a.Authenticate("")

		Expect(err).ToNot(HaveOccurred())
		Expect(p.IsAnonymous()).To(BeTrue())
	})

	It("should round trip an issued token", func() {
		token, err := a.Issue(realestates.Principal{ID: "u1", Groups: []string{"agents"}}, time.Hour)
		Expect(err).ToNot(HaveOccurred())

		p, err := a.Authenticate("Bearer " + token)
		Expect(err).ToNot(HaveOccurred())
		Expect(p.ID).To(Equal("u1"))
		Expect(p.Groups).To(Equal([]string{"agents"}))
		Expect(p.Admin).To(BeFalse())
	})

	It("should derive admin from the groups claim", func() {
		token, err := a.Issue(realestates.Principal{ID: "root", Admin: true}, time.Hour)
		Expect(err).ToNot(HaveOccurred())

		p, err := a.Authenticate("Bearer " + token)
		Expect(err).ToNot(HaveOccurred())
		Expect(p.Admin).To(BeTrue())
	})

	It("should not issue anonymous tokens", func() {
		_, err := a.Issue(realestates.Anonymous(), time.Hour)
		Expect(err).To(HaveOccurred())
	})

	DescribeTable("rejections",
		func(header func() string) {
			_, err := a.Authenticate(header())
			Expect(unauthorized(err)).To(BeTrue())
		},
		Entry("garbage", func() string { return "Bearer garbage" }),
		Entry("basic auth", func() string { return "Basic dXNlcjpwYXNz" }),
		Entry("empty bearer", func() string { return "Bearer " }),
		Entry("expired", func() string {
			token, _ := auth.New("s3cr3t", "realestates").Issue(realestates.Principal{ID: "u1"}, -time.Minute)
			return "Bearer " + token
		}),
		Entry("other secret", func() string {
			token, _ := auth.New("other", "realestates").Issue(realestates.Principal{ID: "u1"}, time.Hour)
			return "Bearer " + token
		}),
		Entry("other issuer", func() string {
			token, _ := auth.New("s3cr3t", "elsewhere").Issue(realestates.Principal{ID: "u1"}, time.Hour)
			return "Bearer " + token
		}),
		Entry("no expiry", func() string {
			token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
				"sub": "u1", "iss": "realestates",
			}).SignedString([]byte("s3cr3t"))
			return "Bearer " + token
		}),
		Entry("none algorithm", func() string {
			token, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
				"sub": "u1", "iss": "realestates", "exp": time.Now().Add(time.Hour).Unix(),
			}).SignedString(jwt.UnsafeAllowNoneSignatureType)
			return "Bearer " + token
		}),
	)
})
