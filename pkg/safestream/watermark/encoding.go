package watermark

import "slices"

// Resolution is the target video resolution, passed to SafeStream as is.
type Resolution string

// EncodingConfiguration holds the output settings of a rendition: saturation, resolution and bit rate
// changes as well as the watermarks to burn in. Any of them may be left out.
type EncodingConfiguration struct {
	// Saturation of the output, between 0 and 1.
	Saturation *float32   `json:"saturation,omitempty" validate:"omitempty,gte=0,lte=1"`
	Resolution Resolution `json:"resolution,omitempty"`
	// BitRate in kilobits per second, e.g. "4000k".
	BitRate    string          `json:"bitRate,omitempty"`
	Watermarks []Configuration `json:"watermarks,omitempty" validate:"omitempty,dive"`
}

func NewEncodingConfiguration(watermarks ...Configuration) EncodingConfiguration {
	return EncodingConfiguration{Watermarks: slices.Clone(watermarks)}
}

func (e EncodingConfiguration) WithSaturation(saturation float32) EncodingConfiguration {
	e.Saturation = &saturation
	return e
}

func (e EncodingConfiguration) WithResolution(resolution Resolution) EncodingConfiguration {
	e.Resolution = resolution
	return e
}

func (e EncodingConfiguration) WithBitRate(bitRate string) EncodingConfiguration {
	e.BitRate = bitRate
	return e
}

func (e EncodingConfiguration) WithWatermark(c Configuration) EncodingConfiguration {
	watermarks := slices.Clone(e.Watermarks)
	e.Watermarks = append(watermarks, c)
	return e
}
