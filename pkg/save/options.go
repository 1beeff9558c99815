// Package save writes pipeline artifacts to disk. Every write goes through a
// temporary file in the destination directory that is renamed over the
// target, so readers never observe a half-written file.
package save

import (
	"io"
	"path/filepath"
	"strings"
)

// Format is the encoding of a saved value.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format of a file from its extension. Anything but
// .json is read and written as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Extension returns the file extension of the format, dot included.
func (f Format) Extension() string {
	return "." + string(f)
}

// options collects where and how a value is written.
type options struct {
	path   string
	writer io.Writer
	format Format
}

// Option configures Value.
type Option func(*options)

// WithFormat forces the output format. Without it the format follows the
// path extension, and JSON is used for writers.
func WithFormat(f Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithPath writes the value atomically to path.
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithWriter writes the value to w. A writer takes precedence over a path.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.format == "" {
		if o.writer == nil && o.path != "" {
			o.format = FormatFor(o.path)
		} else {
			o.format = FormatJSON
		}
	}
	return o
}
