package prescription

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// FileJournal appends newline-terminated lines to a text file. Every Append
// opens the file, writes one line and closes it again.
type FileJournal struct {
	fs   afero.Fs
	path string
}

func NewFileJournal(fs afero.Fs, path string) *FileJournal {
	return &FileJournal{fs: fs, path: path}
}

// NewFileJournals builds file-backed journals on the OS filesystem.
func NewFileJournals(prescPath, remarkPath string) Journals {
	fs := afero.NewOsFs()
	return Journals{
		Prescriptions: NewFileJournal(fs, prescPath),
		Remarks:       NewFileJournal(fs, remarkPath),
	}
}

// Path returns the file the journal appends to.
func (j *FileJournal) Path() string { return j.path }

func (j *FileJournal) Append(_ context.Context, line string) (err error) {
	f, err := j.fs.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", j.path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", j.path, cerr)
		}
	}()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write %s: %w", j.path, err)
	}
	return nil
}
