package export

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Exporter writes snapshots below Dir.
type Exporter struct {
	Dir string
}

func NewExporter(dir string) *Exporter {
	return &Exporter{Dir: dir}
}

// Path is where Export writes the snapshot in format.
func (e *Exporter) Path(kind Kind, personaID int, format Format) string {
	return filepath.Join(e.Dir, Filename(kind, personaID, format))
}

// Export writes the full snapshot and returns the path written.
func (e *Exporter) Export(ctx context.Context, s *Snapshot, format Format) (string, error) {
	if s.Empty() {
		return "", ErrNothingToExport
	}
	path := e.Path(s.Kind, s.PersonaID, format)

	var err error
	switch format {
	case FormatText:
		err = writeAtomic(path, func(w io.Writer) error { return encodeText(w, s) })
	case FormatJSON:
		err = writeAtomic(path, func(w io.Writer) error { return encodeJSON(w, s) })
	case FormatXLSX:
		err = writeAtomic(path, func(w io.Writer) error { return encodeXLSX(w, s) })
	case FormatSQLite:
		err = writeSQLite(ctx, path, s)
	default:
		return "", errors.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return "", errors.Wrapf(err, "could not export %s to %s", s.Kind, path)
	}

	log.Debug().
		Str("kind", string(s.Kind)).
		Int("persona", s.PersonaID).
		Str("format", string(format)).
		Str("path", path).
		Int("rows", len(s.Rows)).
		Msg("exported snapshot")
	return path, nil
}

// writeAtomic writes to a temp file next to path and renames it into place,
// so readers never see a partial export.
func writeAtomic(path string, write func(w io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	w := bufio.NewWriter(f)
	if err = write(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if err = f.Chmod(0644); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
