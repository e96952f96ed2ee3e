package protocol_test

import (
	. "github.com/Exquve/BluetoothARGBController-APP/protocol"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

var _ = Describe("Catalog", func() {
	var catalog *Catalog

	BeforeEach(func() {
		catalog = DefaultCatalog()
	})

	It("should be versioned and list starlight first", func() {
		Expect(catalog.Version).To(Equal(CatalogVersion))
		Expect(catalog.Names()[0]).To(Equal(StarlightFormat))
		Expect(catalog.Names()).To(ContainElement(`elk-bledom`))
		Expect(catalog.Names()).To(ContainElement(`neopixel`))
	})

	It("should return ErrUnknownFormat for unknown names", func() {
		_, err := NewCodec(`nope`)
		Expect(err).To(MatchError(common.ErrUnknownFormat))
	})

	It("should reject duplicate formats", func() {
		_, err := NewCatalog(`test`, NewFormat(`a`, ``), NewFormat(`a`, ``))
		Expect(err).To(MatchError(common.ErrDuplicate))
	})

	It("should only return formats supporting a kind", func() {
		for _, f := range catalog.Supporting(common.KindPower) {
			Expect(f.Supports(common.KindPower)).To(BeTrue())
		}
		names := []string{}
		for _, f := range catalog.Supporting(common.KindPower) {
			names = append(names, f.Name)
		}
		Expect(names).To(Equal([]string{`starlight`, `elk-bledom`, `triones`, `magic-home`}))
	})

	It("should fail closed for unsupported commands", func() {
		codec, err := NewCodec(`simple-rgb`)
		Expect(err).NotTo(HaveOccurred())
		_, err = codec.Encode(common.SetMode{Index: 1})
		Expect(err).To(MatchError(common.ErrUnsupportedCommand))
		_, err = codec.Encode(nil)
		Expect(err).To(MatchError(common.ErrUnsupportedCommand))
	})

	It("should fail closed without a bound codec", func() {
		_, err := Encode(nil, common.Power{On: true})
		Expect(err).To(MatchError(common.ErrUnboundProtocol))
	})

	Describe("vendor frames", func() {
		color := common.SetRGB{Color: common.Color{R: 0x10, G: 0x20, B: 0x30}}

		encode := func(format string, cmd common.Command) []byte {
			codec, err := NewCodec(format)
			Expect(err).NotTo(HaveOccurred())
			frame, err := codec.Encode(cmd)
			Expect(err).NotTo(HaveOccurred())
			return frame
		}

		It("should encode simple layouts", func() {
			Expect(encode(`simple-rgb`, color)).To(Equal([]byte{0x10, 0x20, 0x30}))
			Expect(encode(`rgba`, color)).To(Equal([]byte{0x10, 0x20, 0x30, 0xFF}))
			Expect(encode(`wrgb`, color)).To(Equal([]byte{0x00, 0x10, 0x20, 0x30}))
			Expect(encode(`prefix-ff`, color)).To(Equal([]byte{0xFF, 0x10, 0x20, 0x30}))
			Expect(encode(`cmd-rgb`, color)).To(Equal([]byte{0x01, 0x10, 0x20, 0x30}))
			Expect(encode(`generic-cc`, color)).To(Equal([]byte{0xCC, 0x10, 0x20, 0x30, 0x33}))
			Expect(encode(`wled-binary`, color)).To(Equal([]byte{0x01, 0x00, 0x00, 0x10, 0x20, 0x30}))
			Expect(encode(`govee`, color)).To(Equal([]byte{0x33, 0x01, 0x10, 0x20, 0x30, 0x00, 0x00, 0x00}))
		})

		It("should encode ELK-BLEDOM", func() {
			Expect(encode(`elk-bledom`, color)).To(Equal([]byte{0x7E, 0x00, 0x05, 0x03, 0x10, 0x20, 0x30, 0x00, 0xEF}))
			Expect(encode(`elk-bledom`, common.Power{On: true})).To(Equal([]byte{0x7E, 0x00, 0x04, 0x01, 0x00, 0x00, 0x00, 0xEF}))
			Expect(encode(`elk-bledom`, common.Power{On: false})).To(Equal([]byte{0x7E, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0xEF}))
		})

		It("should encode Triones", func() {
			Expect(encode(`triones`, color)).To(Equal([]byte{0x56, 0x10, 0x20, 0x30, 0x00, 0xF0, 0xAA}))
			Expect(encode(`triones`, common.Power{On: true})).To(Equal([]byte{0xCC, 0x23, 0x33}))
			Expect(encode(`triones`, common.Power{On: false})).To(Equal([]byte{0xCC, 0x24, 0x33}))
			Expect(encode(`triones`, common.SetMode{Index: 0x25})).To(Equal([]byte{0xBB, 0x25, 0x10, 0x44}))
		})

		It("should encode Magic Home", func() {
			Expect(encode(`magic-home`, color)).To(Equal([]byte{0x31, 0x10, 0x20, 0x30, 0x00, 0xF0, 0x0F}))
			Expect(encode(`magic-home`, common.Power{On: false})).To(Equal([]byte{0x71, 0x24, 0x0F}))
		})

		It("should checksum HappyLighting frames modulo 256", func() {
			Expect(encode(`happy-lighting`, color)).To(Equal([]byte{0x51, 0x10, 0x20, 0x30, 0x00, 0xB1}))
			Expect(encode(`happy-lighting`, common.SetRGB{Color: common.White})).To(Equal([]byte{0x51, 0xFF, 0xFF, 0xFF, 0x00, 0x4E}))
		})

		It("should pack NeoPixel frames big-endian", func() {
			Expect(encode(`neopixel`, common.SetRGB{Color: common.Color{R: 255}})).To(Equal(
				[]byte{0x00, 0x00, 0x00, 0x3C, 0xFF, 0x00, 0x00, 0xFF, 0xFF}))
			frame, err := (&NeoPixelColor{Start: 0x0102, Length: 0x0304, Red: 1, Green: 2, Blue: 3, Alpha: 4, Brightness: 5}).Encode()
			Expect(err).NotTo(HaveOccurred())
			Expect(frame).To(Equal([]byte{0x01, 0x02, 0x03, 0x04, 1, 2, 3, 4, 5}))
		})

		It("should encode HSV through the RGB layout", func() {
			Expect(encode(`simple-rgb`, common.SetHSV{Hue: 120, Saturation: 997})).To(Equal([]byte{0x00, 0xFF, 0x00}))
		})
	})
})
