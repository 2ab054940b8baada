package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/itchyny/gojq"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/solarisin/core/pkg/enum"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	// FormatYAML outputs as YAML (default for terminal)
	FormatYAML OutputFormat = "yaml"
	// FormatJSON outputs as JSON
	FormatJSON OutputFormat = "json"
	// FormatTable outputs as formatted table
	FormatTable OutputFormat = "table"
	// FormatRaw outputs raw data
	FormatRaw OutputFormat = "raw"
	// FormatMsgpack outputs binary MessagePack
	FormatMsgpack OutputFormat = "msgpack"
)

// Formats describes every supported output format.
var Formats = enum.New(
	enum.Entry[OutputFormat]{Value: FormatYAML, Name: "yaml", Description: "YAML document (default)"},
	enum.Entry[OutputFormat]{Value: FormatJSON, Name: "json", Description: "indented JSON"},
	enum.Entry[OutputFormat]{Value: FormatTable, Name: "table", Description: "styled key/value table"},
	enum.Entry[OutputFormat]{Value: FormatRaw, Name: "raw", Description: "bytes and strings as-is, YAML otherwise"},
	enum.Entry[OutputFormat]{Value: FormatMsgpack, Name: "msgpack", Description: "binary MessagePack"},
)

// ParseFormat converts a flag value to an OutputFormat. Empty means YAML.
func ParseFormat(s string) (OutputFormat, error) {
	if s == "" {
		return FormatYAML, nil
	}
	f, err := Formats.Parse(s)
	if err != nil {
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
	return f, nil
}

// OutputOptions configures output behavior
type OutputOptions struct {
	// Format is the output format (yaml, json, table, raw, msgpack)
	Format OutputFormat

	// File is the output file path (empty for stdout)
	File string

	// Indent is the indentation for JSON output
	Indent string

	// Query is an optional jq expression applied to the result before it
	// is formatted. Multiple query results are output as a list.
	Query string

	// Writer is an optional custom writer (overrides File)
	Writer io.Writer
}

// Output writes the result to the configured destination
func Output(result any, opts OutputOptions) error {
	if opts.Query != "" {
		v, err := applyQuery(opts.Query, result)
		if err != nil {
			return err
		}
		result = v
	}

	if opts.Writer != nil {
		return render(opts.Writer, result, opts)
	}
	if opts.File != "" {
		// Render fully before touching the file so an encoding error
		// never leaves a truncated result behind.
		var buf bytes.Buffer
		if err := render(&buf, result, opts); err != nil {
			return err
		}
		return OutputBytes(buf.Bytes(), opts.File)
	}
	return render(os.Stdout, result, opts)
}

func render(w io.Writer, result any, opts OutputOptions) error {
	switch opts.Format {
	case FormatJSON:
		return outputJSON(w, result, opts.Indent)
	case FormatYAML, "":
		return outputYAML(w, result)
	case FormatRaw:
		return outputRaw(w, result)
	case FormatTable:
		return outputTable(w, result)
	case FormatMsgpack:
		return outputMsgpack(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}
}

func outputJSON(w io.Writer, result any, indent string) error {
	enc := json.NewEncoder(w)
	if indent == "" {
		indent = "  "
	}
	enc.SetIndent("", indent)
	return enc.Encode(result)
}

func outputYAML(w io.Writer, result any) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func outputRaw(w io.Writer, result any) error {
	switch v := result.(type) {
	case []byte:
		_, err := w.Write(v)
		return err
	case string:
		_, err := io.WriteString(w, v)
		return err
	default:
		return outputYAML(w, result)
	}
}

func outputMsgpack(w io.Writer, result any) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

func outputTable(w io.Writer, result any) error {
	v, err := toGeneric(result)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, RenderTable(NewStyles(DefaultTheme), Flatten(v))+"\n")
	return err
}

// toGeneric converts result to the map/slice/scalar form produced by
// encoding/json, which is what gojq and the table renderer operate on.
func toGeneric(result any) (any, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to format output: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to format output: %w", err)
	}
	return v, nil
}

func applyQuery(expr string, result any) (any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression %q: %w", expr, err)
	}
	input, err := toGeneric(result)
	if err != nil {
		return nil, err
	}

	var out []any
	iter := query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("jq error: %w", err)
		}
		out = append(out, v)
	}
	switch len(out) {
	case 0:
		return nil, fmt.Errorf("jq expression returned no result")
	case 1:
		return out[0], nil
	default:
		return out, nil
	}
}

// OutputBytes writes binary data to a file
func OutputBytes(data []byte, path string) error {
	if path == "" {
		return fmt.Errorf("output file path is required for binary data")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

// PrintSuccess prints a success message with checkmark
func PrintSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "✓ "+format+"\n", args...)
}

// PrintVerbose prints verbose output to w, usually stderr
func PrintVerbose(w io.Writer, verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintf(w, "[verbose] "+format+"\n", args...)
	}
}
