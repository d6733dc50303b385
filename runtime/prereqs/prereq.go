// Package prereqs checks that the host platform is one the storage backends are tested on.
package prereqs

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "prereqs")

type platform struct {
	os   string
	arch string
	// minKernel is the lowest darwin kernel release (major, minor) accepted, as reported by uname -r.
	minKernel []int
}

func (p platform) String() string {
	name := fmt.Sprintf("%s/%s", p.os, p.arch)
	if len(p.minKernel) > 0 {
		name += fmt.Sprintf(" (kernel %d.%d+)", p.minKernel[0], p.minKernel[1])
	}
	return name
}

var (
	// kernelRelease runs uname -r, tests replace it.
	kernelRelease = unameRelease
	runtimeOS     = runtime.GOOS
	runtimeArch   = runtime.GOARCH
)

func unameRelease(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "uname", "-r").Output() // #nosec G204
	if err != nil {
		return "", errors.Wrap(err, "could not run uname")
	}
	return string(out), nil
}

var supportedPlatforms = []platform{
	{os: "linux", arch: "amd64"},
	{os: "linux", arch: "arm64"},
	// Darwin 18 is macOS 10.14.
	{os: "darwin", arch: "amd64", minKernel: []int{18, 0}},
	{os: "darwin", arch: "arm64", minKernel: []int{20, 0}},
	{os: "windows", arch: "amd64"},
}

// parseVersion reads the first num sep-separated integer components of input.
func parseVersion(input string, num int, sep string) ([]int, error) {
	components := strings.Split(strings.TrimSpace(input), sep)
	if len(components) < num {
		return nil, errors.Errorf("insufficient information about version %q", input)
	}
	version := make([]int, num)
	for i := range version {
		n, err := strconv.Atoi(strings.TrimSpace(components[i]))
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse version component %d", i)
		}
		version[i] = n
	}
	return version, nil
}

func atLeast(version, min []int) bool {
	for i := range min {
		if version[i] != min[i] {
			return version[i] > min[i]
		}
	}
	return true
}

func supported(ctx context.Context) (bool, error) {
	for _, p := range supportedPlatforms {
		if runtimeOS != p.os || runtimeArch != p.arch {
			continue
		}
		if len(p.minKernel) == 0 {
			return true, nil
		}
		release, err := kernelRelease(ctx)
		if err != nil {
			return false, errors.Wrap(err, "could not obtain kernel release")
		}
		version, err := parseVersion(release, len(p.minKernel), ".")
		if err != nil {
			return false, errors.Wrap(err, "could not parse kernel release")
		}
		return atLeast(version, p.minKernel), nil
	}
	return false, nil
}

// WarnIfPlatformNotSupported logs a warning when the host is not a supported platform
// or cannot be identified. It never prevents startup.
func WarnIfPlatformNotSupported(ctx context.Context) {
	ok, err := supported(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to detect host platform")
		return
	}
	if !ok {
		names := make([]string, len(supportedPlatforms))
		for i, p := range supportedPlatforms {
			names[i] = p.String()
		}
		log.WithFields(logrus.Fields{
			"platform":  runtimeOS + "/" + runtimeArch,
			"supported": strings.Join(names, ", "),
		}).Warn("This platform is not supported")
	}
}
