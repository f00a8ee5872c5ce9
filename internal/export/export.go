// Package export writes a snapshot of the active menu to a local file or an
// S3 object, as JSON or YAML.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/menu-factory/internal/model"
	"github.com/iliyamo/menu-factory/internal/service"
)

// Destination is where an export goes.  Closing it commits the data.
type Destination interface {
	io.Writer
	Close() error
}

// Document is the exported form of a snapshot.
type Document struct {
	ExportedAt string       `json:"exported_at" yaml:"exported_at"`
	Instance   string       `json:"instance" yaml:"instance"`
	Name       string       `json:"name" yaml:"name"`
	Slogan     string       `json:"slogan,omitempty" yaml:"slogan,omitempty"`
	MenuPrice  string       `json:"menu_price" yaml:"menu_price"`
	Dishes     []model.Dish `json:"dishes" yaml:"-"`
	Rows       []DishRow    `json:"-" yaml:"dishes"`
	Theme      *model.Theme `json:"theme,omitempty" yaml:"theme,omitempty"`
}

// DishRow is the YAML shape of a dish, matching the seed file format.
type DishRow struct {
	ID         int               `yaml:"id"`
	Price      string            `yaml:"price"`
	Type       string            `yaml:"type"`
	Ration     bool              `yaml:"ration"`
	Active     bool              `yaml:"active"`
	Role       string            `yaml:"role,omitempty"`
	Categories string            `yaml:"categories"`
	Allergens  []string          `yaml:"allergens,omitempty"`
	Names      map[string]string `yaml:"names"`
}

// NewDocument converts snap, stamping it with now.
func NewDocument(snap service.Snapshot, now time.Time) Document {
	doc := Document{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Instance:   snap.Instance.ID,
		Name:       snap.Instance.Name,
		Slogan:     snap.Instance.Slogan,
		MenuPrice:  snap.Price.StringFixed(2),
		Dishes:     snap.Dishes,
		Theme:      snap.Instance.Theme,
	}
	for _, d := range snap.Dishes {
		row := DishRow{
			ID:         d.ID,
			Price:      d.Price.String(),
			Type:       string(d.Type),
			Ration:     d.Ration,
			Active:     d.Active,
			Role:       string(d.Role),
			Categories: d.Categories.String(),
			Names:      map[string]string{},
		}
		for _, a := range d.Allergens {
			row.Allergens = append(row.Allergens, string(a))
		}
		for _, lang := range model.Languages {
			if n := d.Name(lang); n != "" && (lang == model.LangES || n != d.NameES) {
				row.Names[string(lang)] = n
			}
		}
		doc.Rows = append(doc.Rows, row)
	}
	return doc
}

// Format is the encoding of an export.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from the destination's extension.
func FormatFor(dest string) Format {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Encode writes doc to w in format f.
func Encode(w io.Writer, doc Document, f Format) error {
	if f == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// Open returns the destination for dest: "s3://bucket/key" uploads to S3,
// "-" is standard output and anything else is a file path.
func Open(ctx context.Context, dest, region string) (Destination, error) {
	if bucket, key, ok := ParseS3URL(dest); ok {
		return NewS3Writer(ctx, region, bucket, key)
	}
	if dest == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return NewFileWriter(dest)
}

// Write exports snap to dest and commits it.
func Write(ctx context.Context, snap service.Snapshot, dest, region string) error {
	w, err := Open(ctx, dest, region)
	if err != nil {
		return err
	}
	if err := Encode(w, NewDocument(snap, time.Now()), FormatFor(dest)); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
