package main

import (
	"os"
	"strings"
)

// progressMode selects the Bubble Tea view for `nuanceur build`.
type progressMode uint8

const (
	progressAuto progressMode = iota
	progressOn
	progressOff
)

var progressModeNames = map[string]progressMode{
	"":      progressAuto,
	"auto":  progressAuto,
	"on":    progressOn,
	"true":  progressOn,
	"off":   progressOff,
	"false": progressOff,
}

func (m progressMode) String() string {
	switch m {
	case progressOn:
		return "on"
	case progressOff:
		return "off"
	default:
		return "auto"
	}
}

func parseProgressMode(value string) (progressMode, error) {
	mode, ok := progressModeNames[strings.TrimSpace(strings.ToLower(value))]
	if !ok {
		return progressAuto, errInvalidFlag("ui", value, "auto|on|off")
	}
	return mode, nil
}

// showProgress decides whether a build of n manifests gets the live view.
// --quiet always wins. In auto mode the view needs a terminal on stdout
// and more than one manifest.
func showProgress(mode progressMode, n int, quiet bool) bool {
	switch {
	case quiet || mode == progressOff:
		return false
	case mode == progressOn:
		return true
	default:
		return n > 1 && isTerminal(os.Stdout)
	}
}
