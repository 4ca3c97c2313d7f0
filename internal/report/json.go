package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/footprint/internal/model"
)

// JSONWriter renders reports in their wire form, the same document the
// HTTP API returns and the cache stores.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output with the given prefix and indent.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders report followed by a newline.
func (w *JSONWriter) Write(report *model.Report) (int, error) {
	report.Normalize()
	return w.writeJSON(report)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	return w.output.Write(append(data, '\n'))
}

// Envelope wraps a report with the footprint version that produced it.
type Envelope struct {
	Version string        `json:"version"`
	Report  *model.Report `json:"report"`
}

// EnvelopeWriter renders reports wrapped in an Envelope.
type EnvelopeWriter struct {
	*JSONWriter
	version string
}

// NewEnvelopeWriter creates a writer for versioned reports.
func NewEnvelopeWriter(output io.Writer, version string, opts ...JSONWriterOption) *EnvelopeWriter {
	return &EnvelopeWriter{JSONWriter: NewJSONWriter(output, opts...), version: version}
}

// Write renders report inside an Envelope.
func (w *EnvelopeWriter) Write(report *model.Report) (int, error) {
	report.Normalize()
	return w.writeJSON(Envelope{Version: w.version, Report: report})
}
