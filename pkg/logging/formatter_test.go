package logging_test

import (
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/stake-rescue/pkg/logging"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ColoredJSONFormatter", func() {
	var formatter *logging.ColoredJSONFormatter

	BeforeEach(func() {
		formatter = logging.NewColoredJSONFormatter()
		formatter.DisableColors = true
	})

	format := func(msg string, fields logrus.Fields) string {
		entry := &logrus.Entry{
			Logger:  logrus.New(),
			Data:    fields,
			Time:    time.Date(2024, 4, 20, 13, 2, 20, 0, time.UTC),
			Level:   logrus.InfoLevel,
			Message: msg,
		}
		out, err := formatter.Format(entry)
		Expect(err).NotTo(HaveOccurred())
		return string(out)
	}

	It("writes time, level and message first", func() {
		line := format("Unstake successful", logrus.Fields{})
		Expect(line).To(HavePrefix("2024-04-20T13:02:20Z INFO    Unstake successful"))
		Expect(line).To(HaveSuffix("\n"))
	})

	It("orders identity fields ahead of the rest", func() {
		line := format("Sweep", logrus.Fields{
			"amount":  "1",
			"tx_hash": "0xabc",
			"step":    "sweep",
			"run_id":  "r1",
		})
		runIdx := strings.Index(line, "run_id=")
		stepIdx := strings.Index(line, "step=")
		hashIdx := strings.Index(line, "tx_hash=")
		amountIdx := strings.Index(line, "amount=")
		Expect(runIdx).To(BeNumerically("<", stepIdx))
		Expect(stepIdx).To(BeNumerically("<", hashIdx))
		Expect(hashIdx).To(BeNumerically("<", amountIdx))
	})

	It("renders big integers and errors readably", func() {
		wei, _ := new(big.Int).SetString("874000000000000000000", 10)
		line := format("Balance", logrus.Fields{
			"balance": wei,
			"error":   errors.New("boom"),
		})
		Expect(line).To(ContainSubstring("balance=874000000000000000000"))
		Expect(line).To(ContainSubstring(`error="boom"`))
	})
})

var _ = Describe("NewLogger", func() {
	It("honours the requested level and format", func() {
		log := logging.NewLogger("debug", "json")
		Expect(log.GetLevel()).To(Equal(logrus.DebugLevel))
		Expect(log.Formatter).To(BeAssignableToTypeOf(&logrus.JSONFormatter{}))
	})

	It("falls back to info with the colored formatter", func() {
		log := logging.NewLogger("loud", "")
		Expect(log.GetLevel()).To(Equal(logrus.InfoLevel))
		Expect(log.Formatter).To(BeAssignableToTypeOf(&logging.ColoredJSONFormatter{}))
	})
})
