package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mssola/useragent"

	"riskgate/internal/device/models"
	"riskgate/internal/recordstore"
	dErrors "riskgate/pkg/domain-errors"
)

const maxTimezoneOffsetMinutes = 840

// ValidateFingerprint rejects fingerprints that cannot serve as a stable
// comparison key.
func ValidateFingerprint(fp recordstore.DeviceFingerprint) error {
	if fp.CanvasHash == "" && fp.WebGLHash == "" && fp.AudioHash == "" {
		return dErrors.New(dErrors.CodeValidation, "fingerprint requires at least one of canvasHash, webglHash or audioHash")
	}
	if fp.ScreenWidth <= 0 || fp.ScreenHeight <= 0 {
		return dErrors.New(dErrors.CodeValidation, "screenWidth and screenHeight must be positive")
	}
	if fp.TimezoneOffset < -maxTimezoneOffsetMinutes || fp.TimezoneOffset > maxTimezoneOffsetMinutes {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("timezoneOffset must be within [-%d, %d] minutes", maxTimezoneOffsetMinutes, maxTimezoneOffsetMinutes))
	}
	if fp.ColorDepth < 0 || fp.HardwareThreads < 0 {
		return dErrors.New(dErrors.CodeValidation, "hardware descriptors must not be negative")
	}
	return nil
}

func ValidateContext(dc models.DeviceContext) error {
	if dc.Location != nil && !dc.Location.Valid() {
		return dErrors.New(dErrors.CodeValidation, "location coordinates are out of range")
	}
	if b := dc.Behavior; b != nil && (b.TypingIntervalMs < 0 || b.MouseVelocity < 0) {
		return dErrors.New(dErrors.CodeValidation, "behavior measurements must not be negative")
	}
	return nil
}

// DeriveDeviceID hashes the stable parts of a fingerprint into an id.
func DeriveDeviceID(fp recordstore.DeviceFingerprint) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		fp.CanvasHash,
		fp.WebGLHash,
		fp.AudioHash,
		fp.Platform,
		fmt.Sprintf("%dx%dx%d", fp.ScreenWidth, fp.ScreenHeight, fp.ColorDepth),
	}, "|")))
	return "dev_" + hex.EncodeToString(sum[:16])
}

// platformFamily folds OS names and navigator.platform values into one
// vocabulary.
func platformFamily(v string) string {
	v = strings.ToLower(v)
	switch {
	case v == "":
		return ""
	case strings.Contains(v, "iphone"), strings.Contains(v, "ipad"), strings.Contains(v, "ios"):
		return "ios"
	case strings.Contains(v, "android"):
		return "android"
	case strings.Contains(v, "win"):
		return "windows"
	case strings.Contains(v, "mac"):
		return "mac"
	case strings.Contains(v, "linux"), strings.Contains(v, "x11"), strings.Contains(v, "cros"):
		return "linux"
	default:
		return ""
	}
}

// platformMismatch reports a User-Agent OS that contradicts the platform the
// fingerprint script reported.
func platformMismatch(uaPlatform, fpPlatform string) bool {
	a, b := platformFamily(uaPlatform), platformFamily(fpPlatform)
	if a == "" || b == "" || a == b {
		return false
	}
	// Android browsers report a Linux navigator.platform
	if (a == "android" && b == "linux") || (a == "linux" && b == "android") {
		return false
	}
	return true
}

type clientInfo struct {
	os          string
	displayName string
}

func parseUserAgent(raw string, fp recordstore.DeviceFingerprint) clientInfo {
	if strings.TrimSpace(raw) == "" {
		name := fp.Platform
		if name == "" {
			name = "Unknown device"
		}
		return clientInfo{displayName: name}
	}
	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	os := ua.OSInfo().Name
	if os == "" {
		os = ua.Platform()
	}
	info := clientInfo{os: os}
	switch {
	case browser != "" && os != "":
		info.displayName = browser + " on " + os
	case browser != "":
		info.displayName = browser
	case os != "":
		info.displayName = os
	default:
		info.displayName = "Unknown device"
	}
	if ua.Mobile() {
		info.displayName += " (mobile)"
	}
	return info
}
