// Package constants provides a centralized location for all configuration
// values and magic numbers used throughout the board application.
package constants

import "time"

// TUI update and display constants
const (
	// TUIUpdateInterval is the minimum time between TUI progress updates
	// to provide smooth progress display without excessive overhead.
	TUIUpdateInterval = 50 * time.Millisecond

	// LogThrottlePercent is the interval (in percent) at which progress
	// logs are emitted when not using the TUI.
	LogThrottlePercent = 5

	// TruncationSuffixWidth is the width of the "..." suffix when truncating strings.
	TruncationSuffixWidth = 3
)

// Rate limiting constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100
)

// Repository layout constants
const (
	// DefaultRosterPath is the path of the editor roster in the repository.
	DefaultRosterPath = "config/eip-editors.yml"

	// DefaultRosterRef is the ref the roster is read from.
	DefaultRosterRef = "master"

	// DefaultDocumentPattern matches changed files that are proposal documents.
	DefaultDocumentPattern = `(EIPS|ERCS)/(eip|erc)-[0-9]+\.md`
)

// Label constants
const (
	// DefaultSkipLabel marks pull requests waiting on an outside review.
	DefaultSkipLabel = "a-review"

	// DefaultOverrideLabel keeps a skip-labelled pull request on the board.
	DefaultOverrideLabel = "e-review"
)

// Pagination constants
const (
	// PerPage is the page size requested from every list endpoint.
	PerPage = 100

	// MaxPRCommits is the most commits the pull request commits endpoint returns.
	MaxPRCommits = 250

	// DefaultWorkers is the number of pull requests evaluated at once.
	DefaultWorkers = 1
)

// Pull request state constants
const (
	// StateOpen indicates a pull request is open.
	StateOpen = "open"
)
