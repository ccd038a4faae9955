// Package video ingests source videos into SafeStream and looks them up by key.
package video

import (
	"slices"

	"github.com/safestream/safestream-go/pkg/safestream/storage"
)

type Status string

const (
	StatusUnknown  Status = ""
	StatusPending  Status = "PENDING"
	StatusIngested Status = "INGESTED"
)

// Terminal reports whether the ingest is finished and the video can be watermarked.
func (s Status) Terminal() bool {
	return s == StatusIngested
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusIngested:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	if s == StatusUnknown {
		return "UNKNOWN"
	}
	return string(s)
}

type ProxyType string

const (
	ProxyTypeHLSDefault ProxyType = "HLSDEFAULT"
)

// SegmentedProxy points SafeStream at an existing un-watermarked HLS rendition of the video.
type SegmentedProxy struct {
	Type ProxyType `json:"type" validate:"oneof=HLSDEFAULT"`
	// URL is the base URL of all segments.
	URL               string `json:"url" validate:"httpurl"`
	SegmentDuration   int64  `json:"segmentDuration" validate:"gte=0"`
	SegmentNameFormat string `json:"segmentNameFormat"`
	// SegmentOverrides maps a segment index to its duration when it differs from SegmentDuration.
	SegmentOverrides map[string]float64 `json:"segmentOverrides,omitempty"`
	SegmentCount     int                `json:"segmentCount" validate:"gte=0"`
}

// NewSegmentedProxy returns an HLSDEFAULT proxy.
func NewSegmentedProxy(url string, segmentDuration int64, segmentNameFormat string, segmentCount int) SegmentedProxy {
	return SegmentedProxy{
		Type:              ProxyTypeHLSDefault,
		URL:               url,
		SegmentDuration:   segmentDuration,
		SegmentNameFormat: segmentNameFormat,
		SegmentCount:      segmentCount,
	}
}

type Video struct {
	ID    string `json:"id,omitempty"`
	Scope string `json:"scope,omitempty"`
	// Key identifies the video in later lookups and watermark requests.
	// SafeStream uses the source URL when it is empty.
	Key           string                      `json:"key,omitempty"`
	Name          string                      `json:"name,omitempty"`
	SourceURL     string                      `json:"sourceUrl" validate:"httpurl"`
	TargetBitRate string                      `json:"targetBitRate,omitempty"`
	Tags          []string                    `json:"tags"`
	AllowHMACAuth bool                        `json:"allowHmacAuth"`
	Encrypt       bool                        `json:"encrypt"`
	Proxies       []SegmentedProxy            `json:"proxies" validate:"dive"`
	Config        *storage.VideoConfiguration `json:"config,omitempty"`
	Status        Status                      `json:"status,omitempty"`
	// Created is the creation time in epoch milliseconds.
	Created   int64  `json:"created,omitempty"`
	CreatedBy string `json:"createdBy,omitempty"`
}

// New returns a video to be ingested from sourceURL, with HMAC auth and encryption enabled.
func New(sourceURL string) Video {
	return Video{
		SourceURL:     sourceURL,
		Tags:          []string{},
		AllowHMACAuth: true,
		Encrypt:       true,
		Proxies:       []SegmentedProxy{},
	}
}

func (v Video) WithKey(key string) Video {
	v.Key = key
	return v
}

func (v Video) WithName(name string) Video {
	v.Name = name
	return v
}

func (v Video) WithSourceURL(sourceURL string) Video {
	v.SourceURL = sourceURL
	return v
}

func (v Video) WithTargetBitRate(bitRate string) Video {
	v.TargetBitRate = bitRate
	return v
}

// WithTags returns a copy of v with tags appended, skipping the ones already present.
func (v Video) WithTags(tags ...string) Video {
	merged := slices.Clone(v.Tags)
	for _, tag := range tags {
		if !slices.Contains(merged, tag) {
			merged = append(merged, tag)
		}
	}
	v.Tags = merged
	return v
}

func (v Video) WithHMACAuth() Video {
	v.AllowHMACAuth = true
	return v
}

func (v Video) WithoutHMACAuth() Video {
	v.AllowHMACAuth = false
	return v
}

func (v Video) WithEncryption() Video {
	v.Encrypt = true
	return v
}

func (v Video) WithoutEncryption() Video {
	v.Encrypt = false
	return v
}

func (v Video) WithExistingProxy(proxy SegmentedProxy) Video {
	proxies := slices.Clone(v.Proxies)
	v.Proxies = append(proxies, proxy)
	return v
}

// WithConfiguration stores the video and its proxies in the given storage instead of SafeStream's.
func (v Video) WithConfiguration(c storage.Configuration) Video {
	v.Config = storage.NewVideoConfiguration(c)
	return v
}

// LookupKey is the key SafeStream files the video under.
func (v Video) LookupKey() string {
	if v.Key != "" {
		return v.Key
	}
	return v.SourceURL
}
