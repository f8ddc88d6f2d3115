package values

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/KenkoGeek/timonel-examples/internal/output"
)

// Read loads the document at path. A missing file yields an empty Document;
// so does a file whose root is not a mapping. Read and parse failures are
// returned as errors.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is a chart file under the output directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}

		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return doc, nil
}

// Write serializes doc to path, replacing any previous content and creating
// parent directories as needed.
func Write(path string, doc *Document) error {
	data, err := doc.Bytes()
	if err != nil {
		return fmt.Errorf("serializing %s: %w", path, err)
	}

	return output.NewFileWriter(path).Write(data)
}
