package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/realestates-go/config"
	"github.com/nrfta/realestates-go/logging"
)

var _ = Describe("New", func() {
	var (
		cfg *config.Config
		out *bytes.Buffer
	)

	BeforeEach(func() {
		cfg = config.Default()
		out = &bytes.Buffer{}
	})

	It("should write JSON records", func() {
		cfg.Log.Format = "json"
		logger, err := logging.New(cfg, out)
		Expect(err).ToNot(HaveOccurred())

		logger.Info("listed", "count", 20)

		var record map[string]any
		Expect(json.Unmarshal(out.Bytes(), &record)).To(Succeed())
		Expect(record).To(HaveKeyWithValue("msg", "listed"))
		Expect(record).To(HaveKeyWithValue("count", 20.0))
	})

	It("should write plain text without color", func() {
		cfg.Log.Color = false
		logger, err := logging.New(cfg, out)
		Expect(err).ToNot(HaveOccurred())

		logger.Info("listed", "count", 20)

		Expect(out.String()).To(ContainSubstring("listed"))
		Expect(out.String()).To(ContainSubstring("count=20"))
		Expect(out.String()).ToNot(ContainSubstring("\x1b["))
	})

	It("should drop records below the level", func() {
		cfg.Log.Level = "warn"
		logger, err := logging.New(cfg, out)
		Expect(err).ToNot(HaveOccurred())

		logger.Info("quiet")
		Expect(out.Len()).To(BeZero())
	})

	It("should reject unknown levels", func() {
		cfg.Log.Level = "loud"
		_, err := logging.New(cfg, out)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("FromContext", func() {
	It("should return the stored logger", func() {
		logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		ctx := logging.WithLogger(context.Background(), logger)

		Expect(logging.FromContext(ctx)).To(BeIdenticalTo(logger))
	})

	It("should default to slog.Default", func() {
		Expect(logging.FromContext(context.Background())).To(BeIdenticalTo(slog.Default()))
	})
})
