package cmd

import (
	"fmt"
	"strconv"

	"github.com/spiffcs/eipboard/internal/tui"
)

// tuiFlag is a tri-state pflag.Value: true, false, or auto (nil).
// A bare --tui sets true.
type tuiFlag struct {
	target **bool
}

func newTUIFlag(opts *Options) *tuiFlag {
	return &tuiFlag{target: &opts.TUI}
}

func (f *tuiFlag) String() string {
	if f.target == nil || *f.target == nil {
		return "auto"
	}
	return strconv.FormatBool(**f.target)
}

func (f *tuiFlag) Set(s string) error {
	if s == "auto" {
		*f.target = nil
		return nil
	}
	switch s {
	case "yes":
		s = "true"
	case "no":
		s = "false"
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid value %q: use true, false, or auto", s)
	}
	*f.target = &v
	return nil
}

func (f *tuiFlag) Type() string {
	return "bool"
}

func (f *tuiFlag) IsBoolFlag() bool {
	return true
}

// shouldUseTUI reports whether progress should be drawn with the TUI.
func shouldUseTUI(opts *Options) bool {
	// verbose logs and the TUI share stderr
	if opts.Verbosity > 0 {
		return false
	}
	if opts.TUI != nil {
		return *opts.TUI
	}
	return tui.ShouldUseTUI()
}
