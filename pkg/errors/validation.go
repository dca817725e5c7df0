package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxKeyLength bounds item keys read from layout files and API requests.
const maxKeyLength = 256

// ValidateKey validates an item key read from external input.
//
// The rules are intentionally conservative:
//   - No empty keys
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "item key cannot be empty")
	}

	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "item key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "item key contains invalid control characters")
		}
	}

	return nil
}

// ValidateBox validates the coordinates of an item box.
// Origins must be finite and non-negative, extents finite and non-negative.
func ValidateBox(x, y, width, height float64) error {
	for _, v := range []struct {
		name  string
		value float64
	}{{"x", x}, {"y", y}, {"width", width}, {"height", height}} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return New(ErrCodeInvalidBox, "box %s must be finite", v.name)
		}
		if v.value < 0 {
			return New(ErrCodeInvalidBox, "box %s cannot be negative (%g)", v.name, v.value)
		}
	}
	return nil
}

// ValidateSize validates a viewport or canvas size.
func ValidateSize(width, height float64) error {
	if math.IsNaN(width) || math.IsNaN(height) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return New(ErrCodeInvalidSize, "size must be finite")
	}
	if width < 0 || height < 0 {
		return New(ErrCodeInvalidSize, "size cannot be negative (%gx%g)", width, height)
	}
	return nil
}

// ValidateBucketSize validates an explicit bucket size. Zero means "derive
// from the canvas" and is accepted.
func ValidateBucketSize(size float64) error {
	if math.IsNaN(size) || math.IsInf(size, 0) {
		return New(ErrCodeInvalidBucketSize, "bucket size must be finite")
	}
	if size < 0 {
		return New(ErrCodeInvalidBucketSize, "bucket size cannot be negative (%g)", size)
	}
	return nil
}

// ValidateOverscan validates an overscan margin in pixels.
func ValidateOverscan(overscan float64) error {
	if math.IsNaN(overscan) || math.IsInf(overscan, 0) || overscan < 0 {
		return New(ErrCodeInvalidInput, "overscan must be a finite non-negative number")
	}
	return nil
}

// ValidateAddr validates a host:port listen or dial address.
func ValidateAddr(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidConfig, "address cannot be empty")
	}
	if !strings.Contains(addr, ":") {
		return New(ErrCodeInvalidConfig, "address %q must be host:port", addr)
	}
	for _, r := range addr {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidConfig, "address contains invalid characters")
		}
	}
	return nil
}
