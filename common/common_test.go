package common_test

import (
	"time"

	. "github.com/Exquve/BluetoothARGBController-APP/common"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type testTarget struct {
	Publisher
	closed []*Subscription
}

func (t *testTarget) NewSubscription() (*Subscription, error) {
	sub := NewSubscription(t)
	t.Subscribe(sub)
	return sub, nil
}

func (t *testTarget) CloseSubscription(sub *Subscription) error {
	t.closed = append(t.closed, sub)
	return t.Unsubscribe(sub)
}

var _ = Describe("Common", func() {
	Describe("Subscription", func() {
		var target *testTarget

		BeforeEach(func() {
			target = new(testTarget)
		})

		It("should deliver published events", func() {
			sub, _ := target.NewSubscription()
			Expect(target.Publish(EventProfileReleased{Format: `starlight`})).To(Succeed())
			Eventually(sub.Events()).Should(Receive(Equal(EventProfileReleased{Format: `starlight`})))
		})

		It("should give every subscription a unique id", func() {
			a, _ := target.NewSubscription()
			b, _ := target.NewSubscription()
			Expect(a.ID()).NotTo(Equal(b.ID()))
		})

		It("should detach on close and refuse a second close", func() {
			sub, _ := target.NewSubscription()
			Expect(sub.Close()).To(Succeed())
			Expect(target.closed).To(ConsistOf(sub))
			Expect(sub.Close()).To(MatchError(ErrClosed))
			Expect(sub.Write(`event`)).To(MatchError(ErrClosed))
			Expect(target.Unsubscribe(sub)).To(MatchError(ErrNotFound))
		})
	})

	Describe("Config", func() {
		It("should validate defaults", func() {
			Expect(DefaultConfig().Validate()).To(Succeed())
			Expect(DefaultConfig().TickInterval()).To(Equal(time.Second / 43))
			Expect(DefaultConfig().BeatMinInterval()).To(Equal(300 * time.Millisecond))
		})

		It("should fill zero fields", func() {
			c := Config{TickRateHz: 20}.WithDefaults()
			Expect(c.TickRateHz).To(Equal(20))
			Expect(c.FFTWindowSize).To(Equal(DefaultFFTWindowSize))
			Expect(c.MinWriteSpacing()).To(Equal(50 * time.Millisecond))
		})

		It("should reject window sizes that are not powers of two", func() {
			c := DefaultConfig()
			c.FFTWindowSize = 1000
			Expect(c.Validate()).To(HaveOccurred())
		})

		It("should not allow beats closer than 300ms", func() {
			c := DefaultConfig()
			c.BeatMinIntervalMs = 299
			Expect(c.Validate()).To(MatchError(ContainSubstring(`beatMinIntervalMs`)))
			c.BeatMinIntervalMs = 300
			Expect(c.Validate()).To(Succeed())
			c.BeatMinIntervalMs = 500
			Expect(c.Validate()).To(Succeed())
		})
	})

	Describe("UUIDs", func() {
		It("should expand short identifiers", func() {
			Expect(ShortUUID(0xFFF3).String()).To(Equal(`0000fff3-0000-1000-8000-00805f9b34fb`))
			u, err := ParseUUID(`FFE1`)
			Expect(err).NotTo(HaveOccurred())
			Expect(u).To(Equal(ShortUUID(0xFFE1)))
		})
	})

	Describe("Capability", func() {
		It("should report writability", func() {
			Expect(CapWriteNoResponse.Writable()).To(BeTrue())
			Expect(CapWrite.Writable()).To(BeTrue())
			Expect((CapRead | CapNotify).Writable()).To(BeFalse())
			Expect((CapRead | CapNotify).String()).To(Equal(`read|notify`))
		})
	})

	It("should format payloads as hex", func() {
		Expect(HexString([]byte{0xBC, 0x01, 0x01, 0x00, 0x55})).To(Equal(`BC 01 01 00 55`))
		Expect(HexString(nil)).To(Equal(``))
	})

	It("should describe commands", func() {
		Expect(FormatCommand(Power{On: true})).To(Equal(`power(on=true)`))
		Expect(SetHSV{Hue: 500, Saturation: -1}.Clamped()).To(Equal(SetHSV{Hue: 360}))
	})
})
