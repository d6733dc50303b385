// Package progress renders terminal progress bars for long running database
// operations such as imports and bulk registrations.
package progress

import (
	"fmt"
	"io"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

var theme = progressbar.Theme{
	Saucer:        "[green]=[reset]",
	SaucerHead:    "[green]>[reset]",
	SaucerPadding: " ",
	BarStart:      "[",
	BarEnd:        "]",
}

// InitializeProgressBar returns a progress bar counting numItems items.
func InitializeProgressBar(numItems int, msg string) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		numItems,
		progressbar.OptionFullWidth(),
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(theme),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
		progressbar.OptionSetDescription(msg),
	)
}

// InitializeBytesProgressBar returns a progress bar tracking numBytes bytes.
func InitializeBytesProgressBar(numBytes int64, msg string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		numBytes,
		progressbar.OptionFullWidth(),
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetTheme(theme),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
		progressbar.OptionSetDescription(msg),
	)
}

// TrackReader returns a reader advancing bar by the number of bytes read from r.
func TrackReader(r io.Reader, bar *progressbar.ProgressBar) io.Reader {
	reader := progressbar.NewReader(r, bar)
	return &reader
}
