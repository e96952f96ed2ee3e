package protocol_test

import (
	. "github.com/Exquve/BluetoothARGBController-APP/protocol"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/Exquve/BluetoothARGBController-APP/common"
)

var _ = Describe("Starlight", func() {
	var codec Codec

	BeforeEach(func() {
		var err error
		codec, err = NewCodec(StarlightFormat)
		Expect(err).NotTo(HaveOccurred())
		Expect(codec.Format()).To(Equal(`starlight`))
	})

	table.DescribeTable("frames",
		func(cmd common.Command, expected []byte) {
			frame, err := codec.Encode(cmd)
			Expect(err).NotTo(HaveOccurred())
			Expect(frame).To(Equal(expected))
		},
		table.Entry("red", common.SetRGB{Color: common.Color{R: 255}},
			[]byte{0xBC, 0x04, 0x06, 0x00, 0x00, 0x03, 0xE8, 0x00, 0x00, 0xFF, 0x00, 0x00, 0x55}),
		table.Entry("green", common.SetRGB{Color: common.Color{G: 255}},
			[]byte{0xBC, 0x04, 0x06, 0x00, 0x78, 0x03, 0xE8, 0x00, 0x00, 0x00, 0xFF, 0x00, 0x55}),
		table.Entry("blue", common.SetRGB{Color: common.Color{B: 255}},
			[]byte{0xBC, 0x04, 0x06, 0x00, 0xF0, 0x03, 0xE8, 0x00, 0x00, 0x00, 0x00, 0xFF, 0x55}),
		table.Entry("magenta splits hue by 255", common.SetRGB{Color: common.Color{R: 255, B: 255}},
			[]byte{0xBC, 0x04, 0x06, 0x01, 0x2D, 0x03, 0xE8, 0x00, 0x00, 0xFF, 0x00, 0xFF, 0x55}),
		table.Entry("white zeroes saturation", common.SetRGB{Color: common.White},
			[]byte{0xBC, 0x04, 0x06, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0x55}),
		table.Entry("hsv at the top of the wheel", common.SetHSV{Hue: 360, Saturation: 997},
			[]byte{0xBC, 0x04, 0x06, 0x01, 0x69, 0x03, 0xE8, 0x00, 0x00, 0xFF, 0x00, 0x00, 0x55}),
		table.Entry("hsv clamps out of range input", common.SetHSV{Hue: 400, Saturation: 2000},
			[]byte{0xBC, 0x04, 0x06, 0x01, 0x69, 0x03, 0xE8, 0x00, 0x00, 0xFF, 0x00, 0x00, 0x55}),
		table.Entry("flash uses the color frame", common.Flash{Color: common.Color{R: 255}, Speed: 100},
			[]byte{0xBC, 0x04, 0x06, 0x00, 0x00, 0x03, 0xE8, 0x00, 0x00, 0xFF, 0x00, 0x00, 0x55}),
		table.Entry("power on is 0x00", common.Power{On: true},
			[]byte{0xBC, 0x01, 0x01, 0x00, 0x55}),
		table.Entry("power off is 0x01", common.Power{On: false},
			[]byte{0xBC, 0x01, 0x01, 0x01, 0x55}),
		table.Entry("full brightness splits by 256", common.SetBrightness{Level: 1000},
			[]byte{0xBC, 0x05, 0x06, 0x03, 0xE8, 0x00, 0x00, 0x00, 0x00, 0x55}),
		table.Entry("brightness 300", common.SetBrightness{Level: 300},
			[]byte{0xBC, 0x05, 0x06, 0x01, 0x2C, 0x00, 0x00, 0x00, 0x00, 0x55}),
		table.Entry("brightness clamps", common.SetBrightness{Level: -5},
			[]byte{0xBC, 0x05, 0x06, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x55}),
		table.Entry("mode below the gap", common.SetMode{Index: 5},
			[]byte{0xBC, 0x06, 0x02, 0x00, 0x05, 0x55}),
		table.Entry("mode 112 becomes 113", common.SetMode{Index: 112},
			[]byte{0xBC, 0x06, 0x02, 0x00, 0x71, 0x55}),
		table.Entry("mode 120 becomes 122", common.SetMode{Index: 120},
			[]byte{0xBC, 0x06, 0x02, 0x00, 0x7A, 0x55}),
		table.Entry("mode 300 splits by 255", common.SetMode{Index: 300},
			[]byte{0xBC, 0x06, 0x02, 0x01, 0x2F, 0x55}),
		table.Entry("speed", common.SetSpeed{Speed: 128},
			[]byte{0xBC, 0x08, 0x01, 0x80, 0x55}),
		table.Entry("speed clamps", common.SetSpeed{Speed: 999},
			[]byte{0xBC, 0x08, 0x01, 0xFF, 0x55}),
		table.Entry("forward", common.SetDirection{Reverse: false},
			[]byte{0xBC, 0x07, 0x01, 0x00, 0x55}),
		table.Entry("reverse", common.SetDirection{Reverse: true},
			[]byte{0xBC, 0x07, 0x01, 0x01, 0x55}),
		table.Entry("temperature", common.SetTemperature{Theta: 300},
			[]byte{0xBC, 0x13, 0x02, 0x01, 0x2C, 0x55}),
	)

	It("should map mode indices around the missing slot", func() {
		Expect(StarlightModeIndex(0)).To(Equal(0))
		Expect(StarlightModeIndex(111)).To(Equal(111))
		Expect(StarlightModeIndex(112)).To(Equal(113))
		Expect(StarlightModeIndex(113)).To(Equal(115))
		Expect(StarlightModeIndex(-1)).To(Equal(0))
	})

	It("should keep the highest mode index encodable", func() {
		frame, err := StarlightModeFrame(MaxModeIndex + 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(frame).To(Equal([]byte{0xBC, 0x06, 0x02, 0xFF, 0xFE, 0x55}))
	})

	It("should be deterministic", func() {
		cmd := common.SetRGB{Color: common.Color{R: 12, G: 200, B: 99}}
		a, err := codec.Encode(cmd)
		Expect(err).NotTo(HaveOccurred())
		b, err := codec.Encode(cmd)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
	})

	It("should only carry bytes inside the header and footer", func() {
		for hue := 0; hue <= common.MaxHue; hue += 7 {
			frame, err := codec.Encode(common.SetHSV{Hue: hue, Saturation: common.MaxSaturation})
			Expect(err).NotTo(HaveOccurred())
			Expect(frame).To(HaveLen(13))
			Expect(frame[0]).To(Equal(StarlightHeader))
			Expect(frame[12]).To(Equal(StarlightFooter))
			Expect(int(frame[3])*255 + int(frame[4])).To(Equal(hue))
		}
	})
})
