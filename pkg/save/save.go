package save

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/db-afk/GRAO-tables-processing/pkg/constants"
	"github.com/db-afk/GRAO-tables-processing/pkg/errors"
)

// File atomically replaces path with whatever write produces. The parent
// directory is created if missing.
func File(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tempPath := tempFile.Name()

	if err := write(tempFile); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return err
	}
	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return errors.WrapIO("sync", path, err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("close", path, err)
	}
	if err := os.Chmod(tempPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("chmod", path, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("move", path, err)
	}
	return nil
}

// Marshal encodes v in the given format.
func Marshal(v any, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		data, err := yaml.MarshalWithOptions(v, yaml.Indent(2), yaml.IndentSequence(false))
		if err != nil {
			return nil, errors.WrapParse("yaml", "", err)
		}
		return data, nil
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, errors.NewValidationError("format", f, "unsupported format")
	}
}

// Value encodes v and writes it to the configured writer, or atomically to
// the configured path.
func Value(v any, opts ...Option) error {
	o := newOptions(opts)
	if o.writer == nil && o.path == "" {
		return errors.NewValidationError("path", "", "either a path or a writer is required")
	}
	data, err := Marshal(v, o.format)
	if err != nil {
		return err
	}
	if o.writer != nil {
		if _, err := o.writer.Write(data); err != nil {
			return errors.WrapIO("write", "output", err)
		}
		return nil
	}
	return File(o.path, func(w io.Writer) error {
		if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
			return errors.WrapIO("write", o.path, err)
		}
		return nil
	})
}

// Load decodes the file at path into v. The format follows the extension,
// see FormatFor.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("file", path)
		}
		return errors.WrapIO("read", path, err)
	}
	switch FormatFor(path) {
	case FormatJSON:
		err = json.Unmarshal(data, v)
	default:
		err = yaml.Unmarshal(data, v)
	}
	if err != nil {
		return errors.WrapParse(string(FormatFor(path)), path, err)
	}
	return nil
}
