package realestates_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/filter"
)

func intPtr(n int) *int {
	return &n
}

var _ = Describe("PageConfig", func() {
	Describe("NewPageConfig", func() {
		It("should create config with default values", func() {
			config := realestates.NewPageConfig()

			Expect(config.DefaultCount).To(Equal(20))
			Expect(config.MaxCount).To(Equal(100))
		})
	})

	Describe("WithDefaultCount", func() {
		It("should set the default count", func() {
			Expect(realestates.NewPageConfig().WithDefaultCount(10).DefaultCount).To(Equal(10))
		})

		It("should ignore zero or negative values", func() {
			config := realestates.NewPageConfig().WithDefaultCount(0).WithDefaultCount(-5)

			Expect(config.DefaultCount).To(Equal(realestates.DefaultCount))
		})

		It("should support method chaining", func() {
			config := realestates.NewPageConfig().WithDefaultCount(5).WithMaxCount(50)

			Expect(config.DefaultCount).To(Equal(5))
			Expect(config.MaxCount).To(Equal(50))
		})
	})

	Describe("WithMaxCount", func() {
		It("should set the max count", func() {
			Expect(realestates.NewPageConfig().WithMaxCount(500).MaxCount).To(Equal(500))
		})

		It("should ignore zero or negative values", func() {
			config := realestates.NewPageConfig().WithMaxCount(0).WithMaxCount(-1)

			Expect(config.MaxCount).To(Equal(realestates.MaxCount))
		})
	})

	Describe("EffectiveCount", func() {
		It("should return the default when count is nil", func() {
			Expect(realestates.NewPageConfig().WithDefaultCount(7).EffectiveCount(nil)).To(Equal(7))
		})

		It("should return the requested count", func() {
			Expect(realestates.NewPageConfig().EffectiveCount(intPtr(42))).To(Equal(42))
		})

		It("should handle nil config gracefully", func() {
			var config *realestates.PageConfig

			Expect(config.EffectiveCount(nil)).To(Equal(realestates.DefaultCount))
		})

		It("should use system defaults when config values are zero", func() {
			config := &realestates.PageConfig{}

			Expect(config.EffectiveCount(nil)).To(Equal(realestates.DefaultCount))
		})
	})

	Describe("Validate", func() {
		It("should accept a nil count", func() {
			Expect(realestates.NewPageConfig().Validate(nil)).To(Succeed())
		})

		It("should accept counts within range", func() {
			config := realestates.NewPageConfig()

			Expect(config.Validate(intPtr(1))).To(Succeed())
			Expect(config.Validate(intPtr(100))).To(Succeed())
		})

		It("should reject counts outside range with a CountError", func() {
			err := realestates.NewPageConfig().Validate(intPtr(101))

			var countErr *realestates.CountError
			Expect(err).To(BeAssignableToTypeOf(countErr))
			countErr = err.(*realestates.CountError)
			Expect(countErr.Requested).To(Equal(101))
			Expect(countErr.Minimum).To(Equal(1))
			Expect(countErr.Maximum).To(Equal(100))
			Expect(err.Error()).To(Equal("count 101 is out of range, expected 1 to 100"))
		})

		It("should reject zero and negative counts", func() {
			Expect(realestates.NewPageConfig().Validate(intPtr(0))).To(HaveOccurred())
			Expect(realestates.NewPageConfig().Validate(intPtr(-3))).To(HaveOccurred())
		})

		It("should honour a custom max", func() {
			config := realestates.NewPageConfig().WithMaxCount(10)

			Expect(config.Validate(intPtr(10))).To(Succeed())
			Expect(config.Validate(intPtr(11))).To(HaveOccurred())
		})

		It("should handle nil config gracefully", func() {
			var config *realestates.PageConfig

			Expect(config.Validate(intPtr(100))).To(Succeed())
			Expect(config.Validate(intPtr(101))).To(HaveOccurred())
		})
	})
})

var _ = Describe("QuerySpec", func() {
	It("should clone without sharing slices", func() {
		spec := &realestates.QuerySpec{
			Filter: filter.Cmp("type", filter.OpEq, "house"),
			Sort:   []realestates.OrderBy{{Column: "price", Desc: true}},
			Fields: []string{"price"},
			Count:  20,
			Query:  json.RawMessage(`{"type":"house"}`),
		}

		clone := spec.Clone()
		clone.Sort[0].Desc = false
		clone.Fields[0] = "type"

		Expect(spec.Sort[0].Desc).To(BeTrue())
		Expect(spec.Fields[0]).To(Equal("price"))
		Expect(clone.Filter).To(Equal(spec.Filter))
		Expect(clone.Count).To(Equal(20))
	})
})

var _ = Describe("Reverse", func() {
	It("should flip every key", func() {
		Expect(realestates.Reverse([]realestates.OrderBy{
			{Column: "price", Desc: true},
			{Column: "id"},
		})).To(Equal([]realestates.OrderBy{
			{Column: "price"},
			{Column: "id", Desc: true},
		}))
	})

	It("should not modify its input", func() {
		in := []realestates.OrderBy{{Column: "createdAt", Desc: true}}
		realestates.Reverse(in)

		Expect(in[0].Desc).To(BeTrue())
	})
})
