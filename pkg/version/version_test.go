package version

import (
	"encoding/json"
	"regexp"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBuildInfo replaces the embedded build info for one test.
func stubBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	old := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() { readBuildInfo = old })
}

// stubLdflags sets the ldflags variables for one test.
func stubLdflags(t *testing.T, version, commit, date string) {
	t.Helper()
	oldV, oldC, oldD := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })
}

func TestVersion_FollowsSemverOrDev(t *testing.T) {
	if Version == "dev" {
		return
	}
	semverRegex := regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	require.True(t, semverRegex.MatchString(Version), "got: %s", Version)
}

func TestGetInfo_LdflagsWin(t *testing.T) {
	// Given: ldflags values and conflicting embedded build info
	stubLdflags(t, "1.2.0", "abc1234", "2026-10-16T00:00:00Z")
	stubBuildInfo(t, &debug.BuildInfo{
		Main:     debug.Module{Version: "v9.9.9"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffffffffffffff"}},
	})

	// When: reading the info
	info := GetInfo()

	// Then: ldflags take precedence
	assert.Equal(t, "1.2.0", info.Version)
	assert.Equal(t, "abc1234", info.Commit)
	assert.Equal(t, "2026-10-16T00:00:00Z", info.Date)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
}

func TestGetInfo_FallsBackToBuildInfo(t *testing.T) {
	// Given: a go install build without ldflags
	stubLdflags(t, "dev", "unknown", "unknown")
	stubBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-10-01T08:00:00Z"},
		},
	})

	info := GetInfo()

	assert.Equal(t, "v0.3.1", info.Version)
	assert.Equal(t, "0123456789ab", info.Commit)
	assert.Equal(t, "2026-10-01T08:00:00Z", info.Date)
}

func TestGetInfo_DevelBuild(t *testing.T) {
	stubLdflags(t, "dev", "unknown", "unknown")
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})

	info := GetInfo()

	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, "unknown", info.Commit)
}

func TestGetInfo_NoBuildInfo(t *testing.T) {
	stubLdflags(t, "dev", "unknown", "unknown")
	stubBuildInfo(t, nil)

	assert.Equal(t, "dev", Short())
}

func TestString_ReturnsFormattedString(t *testing.T) {
	stubLdflags(t, "1.0.0", "abc", "today")
	stubBuildInfo(t, nil)

	assert.Equal(t, "relterms 1.0.0 (commit: abc, built: today, go: "+GoVersion+")", String())
	assert.Equal(t, "1.0.0", Short())
}

func TestGetInfo_IsJSONSerializable(t *testing.T) {
	data, err := json.Marshal(GetInfo())
	require.NoError(t, err)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal(data, &parsed))
	for _, key := range []string{"version", "commit", "date", "go_version", "os", "arch"} {
		assert.Contains(t, parsed, key)
	}
}
