package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionInfo_FullString(t *testing.T) {
	info := VersionInfo{Version: "1.2.0", GitCommit: "abc123", BuildTime: "2026-01-02"}
	assert.Equal(t, "vizwave 1.2.0 (commit: abc123, built: 2026-01-02)", info.FullString())

	info.GitTag = "v1.2.1"
	assert.Equal(t, "vizwave v1.2.1 (commit: abc123, built: 2026-01-02)", info.FullString())

	assert.Equal(t, Version, GetVersionInfo().Version)
}
