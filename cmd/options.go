package cmd

// Options holds the command-line options for the board command.
type Options struct {
	Format    string
	Markdown  bool // legacy spelling of --output markdown
	Verbosity int
	Workers   int   // 0 = use config
	TUI       *bool // nil = auto-detect, true = force TUI, false = disable TUI

	CPUProfile string
	MemProfile string
	Trace      string
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates Options and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format.
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithMarkdown selects markdown output.
func WithMarkdown(markdown bool) Option {
	return func(o *Options) {
		o.Markdown = markdown
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithWorkers sets the number of concurrent evaluations.
func WithWorkers(workers int) Option {
	return func(o *Options) {
		o.Workers = workers
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}
