package view

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gosuri/uitable"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/plexsphere/servicectl/internal/systemd"
)

// Output formats.
const (
	FormatAuto  = "auto"
	FormatTable = "table"
	FormatPlain = "plain"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var formats = map[string]bool{
	FormatAuto:  true,
	FormatTable: true,
	FormatPlain: true,
	FormatJSON:  true,
	FormatYAML:  true,
}

// Config holds output settings.
type Config struct {
	// Format is the default list format.
	// Default: auto (table on a terminal, plain otherwise)
	Format string `yaml:"format"`

	// MaxColumnWidth truncates table cells wider than this many columns.
	// Default: 60
	MaxColumnWidth uint `yaml:"max_column_width"`
}

// DefaultMaxColumnWidth is the default table cell width.
const DefaultMaxColumnWidth = 60

// ApplyDefaults sets default values for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Format == "" {
		c.Format = FormatAuto
	}
	if c.MaxColumnWidth == 0 {
		c.MaxColumnWidth = DefaultMaxColumnWidth
	}
}

// Validate checks that configuration values are acceptable.
func (c *Config) Validate() error {
	if !formats[c.Format] {
		return fmt.Errorf("view: config: invalid Format %q", c.Format)
	}
	return nil
}

// ResolveFormat turns FormatAuto into table or plain depending on whether
// w is a terminal.
func ResolveFormat(format string, w io.Writer) string {
	if format != FormatAuto && format != "" {
		return format
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return FormatTable
	}
	return FormatPlain
}

// Renderer writes service records in one of the supported formats.
type Renderer struct {
	cfg Config
}

// NewRenderer creates a Renderer. Config defaults are applied automatically.
func NewRenderer(cfg Config) *Renderer {
	cfg.ApplyDefaults()
	return &Renderer{cfg: cfg}
}

// Render writes records to w in format. FormatAuto is resolved against w.
func (r *Renderer) Render(w io.Writer, format string, records []systemd.ServiceRecord) error {
	switch ResolveFormat(format, w) {
	case FormatTable:
		return r.renderTable(w, records)
	case FormatPlain:
		return renderPlain(w, records)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.New("view: unknown format " + format)
}

func (r *Renderer) renderTable(w io.Writer, records []systemd.ServiceRecord) error {
	table := uitable.New()
	table.MaxColWidth = r.cfg.MaxColumnWidth
	table.AddRow("NAME", "STATUS", "ENABLEMENT", "BUS", "DESCRIPTION")
	for _, rec := range records {
		table.AddRow(rec.Name, ActivationLabel(rec.Status), EnablementLabel(rec.Enablement), rec.Domain, rec.Description)
	}
	_, err := fmt.Fprintln(w, table)
	return err
}

// renderPlain writes one tab-separated line per record with raw state text,
// for scripts.
func renderPlain(w io.Writer, records []systemd.ServiceRecord) error {
	for _, rec := range records {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			rec.Name, rec.Status, rec.Enablement, rec.Domain, rec.Description); err != nil {
			return err
		}
	}
	return nil
}
