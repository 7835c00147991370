package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Marshal serializes a Document to pretty-printed JSON bytes.
func Marshal(d Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Document and validates it.
func Unmarshal(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("unmarshal document: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}

// Validate checks the structural invariants of a document: one record per
// marker, indices 0..count-1 in order, and at most one Marker per record.
func (d Document) Validate() error {
	if d.Version > Version {
		return fmt.Errorf("unsupported document version %d (max %d)", d.Version, Version)
	}
	if d.Count < 0 {
		return fmt.Errorf("negative count %d", d.Count)
	}
	if len(d.Records) != d.Count {
		return fmt.Errorf("document has %d records for count %d", len(d.Records), d.Count)
	}
	for i, r := range d.Records {
		if r.Index != i {
			return fmt.Errorf("record %d has index %d", i, r.Index)
		}
	}
	if len(d.Markers) > d.Count {
		return fmt.Errorf("document has %d markers for count %d", len(d.Markers), d.Count)
	}
	return nil
}

// Write writes a Document as JSON to w.
func Write(d Document, w io.Writer) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Read reads and validates a Document from r.
func Read(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	return Unmarshal(data)
}

// WriteFile writes a Document to a JSON file.
func WriteFile(d Document, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a Document from a JSON file.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}

// ReadMarkersFile reads a JSON array of markers, as accepted by the CLI.
// Entries with an empty ID are dropped, mirroring how hosts ignore null markers.
func ReadMarkersFile(path string) ([]Marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var raw []*Marker
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse markers %s: %w", path, err)
	}
	markers := make([]Marker, 0, len(raw))
	for _, m := range raw {
		if m == nil || m.ID == "" {
			continue
		}
		markers = append(markers, *m)
	}
	return markers, nil
}
