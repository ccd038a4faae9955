package watermark

type Type string

const (
	TypeText  Type = "TEXT"
	TypeImage Type = "IMAGE"
)

type HorizontalAlignment string

const (
	AlignLeft   HorizontalAlignment = "LEFT"
	AlignCenter HorizontalAlignment = "CENTER"
	AlignRight  HorizontalAlignment = "RIGHT"
)

type VerticalAlignment string

const (
	AlignTop    VerticalAlignment = "TOP"
	AlignMiddle VerticalAlignment = "MIDDLE"
	AlignBottom VerticalAlignment = "BOTTOM"
)

// Configuration describes one watermark burned into a video.
// Positions, sizes and opacities are relative values between 0 and 1.
// The zero value is not usable, start from NewConfiguration.
type Configuration struct {
	// Content is the text to render for TEXT watermarks, or the image URL for IMAGE ones.
	Content string `json:"content"`
	Type    Type   `json:"type" validate:"oneof=TEXT IMAGE"`
	// HorizontalAlignment anchors X: LEFT aligns the left edge of the watermark on X.
	HorizontalAlignment HorizontalAlignment `json:"horizontalAlignment" validate:"oneof=LEFT CENTER RIGHT"`
	VerticalAlignment   VerticalAlignment   `json:"verticalAlignment" validate:"oneof=TOP MIDDLE BOTTOM"`
	X                   float32             `json:"x" validate:"gte=0,lte=1"`
	Y                   float32             `json:"y" validate:"gte=0,lte=1"`
	FontSize            float32             `json:"fontSize" validate:"gte=0,lte=1"`
	FontOpacity         float32             `json:"fontOpacity" validate:"gte=0,lte=1"`
	FontColor           string              `json:"fontColor" validate:"color"`
	ShadowOpacity       float32             `json:"shadowOpacity" validate:"gte=0,lte=1"`
	ShadowColor         string              `json:"shadowColor" validate:"color"`
	ShadowOffsetX       float32             `json:"shadowOffsetX" validate:"gte=0,lte=1"`
	ShadowOffsetY       float32             `json:"shadowOffsetY" validate:"gte=0,lte=1"`
}

// NewConfiguration returns a centered white text watermark with a light shadow.
func NewConfiguration() Configuration {
	return Configuration{
		Type:                TypeText,
		HorizontalAlignment: AlignCenter,
		VerticalAlignment:   AlignMiddle,
		X:                   0.5,
		Y:                   0.5,
		FontSize:            0.05,
		FontOpacity:         0.3,
		FontColor:           "0xFFFFFF",
		ShadowOpacity:       0.1,
		ShadowColor:         "0x000000",
		ShadowOffsetX:       0.08,
		ShadowOffsetY:       0.08,
	}
}

// NewTextConfiguration returns the default watermark rendering text.
func NewTextConfiguration(text string) Configuration {
	return NewConfiguration().WithContent(text)
}

func (c Configuration) WithContent(content string) Configuration {
	c.Content = content
	return c
}

func (c Configuration) WithType(t Type) Configuration {
	c.Type = t
	return c
}

func (c Configuration) WithX(x float32) Configuration {
	c.X = x
	return c
}

func (c Configuration) WithY(y float32) Configuration {
	c.Y = y
	return c
}

func (c Configuration) WithPosition(x, y float32) Configuration {
	return c.WithX(x).WithY(y)
}

func (c Configuration) WithFontSize(size float32) Configuration {
	c.FontSize = size
	return c
}

func (c Configuration) WithFontOpacity(opacity float32) Configuration {
	c.FontOpacity = opacity
	return c
}

func (c Configuration) WithFontColor(color string) Configuration {
	c.FontColor = color
	return c
}

func (c Configuration) WithShadowOpacity(opacity float32) Configuration {
	c.ShadowOpacity = opacity
	return c
}

func (c Configuration) WithShadowColor(color string) Configuration {
	c.ShadowColor = color
	return c
}

func (c Configuration) WithShadowOffsetX(offset float32) Configuration {
	c.ShadowOffsetX = offset
	return c
}

func (c Configuration) WithShadowOffsetY(offset float32) Configuration {
	c.ShadowOffsetY = offset
	return c
}

func (c Configuration) WithHorizontalAlignment(a HorizontalAlignment) Configuration {
	c.HorizontalAlignment = a
	return c
}

func (c Configuration) WithVerticalAlignment(a VerticalAlignment) Configuration {
	c.VerticalAlignment = a
	return c
}
