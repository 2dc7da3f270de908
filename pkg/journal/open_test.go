package journal

import (
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenOrWarn", func() {
	var (
		logger *logrus.Logger
		hook   *test.Hook
	)

	BeforeEach(func() {
		logger, hook = test.NewNullLogger()
	})

	It("returns no store when no database is configured", func() {
		Expect(OpenOrWarn(logger, "", "0xabc", 56)).To(BeNil())
		Expect(hook.AllEntries()).To(BeEmpty())
	})

	It("warns and returns no store when the database is unreachable", func() {
		url := "postgres://rescue@127.0.0.1:1/rescue?sslmode=disable&connect_timeout=1"

		Expect(OpenOrWarn(logger, url, "0xabc", 56)).To(BeNil())

		entry := hook.LastEntry()
		Expect(entry).NotTo(BeNil())
		Expect(entry.Level).To(Equal(logrus.WarnLevel))
		Expect(entry.Message).To(Equal("Run journal unavailable, continuing without it"))
		Expect(entry.Data).To(HaveKey(logrus.ErrorKey))
	})
})
