package irfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format selects the serialization of a Corpus.
type Format uint8

const (
	FormatJSON Format = iota
	FormatYAML
	FormatMsgpack
)

var ErrUnknownFormat = errors.New("unknown IR format")

// ParseFormat maps a flag or manifest value onto a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	}
	return FormatJSON, fmt.Errorf("%w %q", ErrUnknownFormat, s)
}

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatMsgpack:
		return "msgpack"
	}
	return "unknown"
}

// Write serializes c to w.
func Write(w io.Writer, c *Corpus, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		// имена полей msgpack совпадают с JSON
		enc.SetCustomStructTag("json")
		enc.UseCompactInts(true)
		return enc.Encode(c)
	}
	return fmt.Errorf("%w %d", ErrUnknownFormat, f)
}

// Read decodes a corpus written by Write and checks its schema version.
func Read(r io.Reader, f Format) (*Corpus, error) {
	var c Corpus
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&c)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&c)
	case FormatMsgpack:
		dec := msgpack.NewDecoder(r)
		dec.SetCustomStructTag("json")
		err = dec.Decode(&c)
	default:
		return nil, fmt.Errorf("%w %d", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s IR: %w", f, err)
	}
	if c.Schema != SchemaVersion {
		return nil, fmt.Errorf("IR schema %d, want %d", c.Schema, SchemaVersion)
	}
	return &c, nil
}

// Marshal is Write into a byte slice.
func Marshal(c *Corpus, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, c, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
