// Package files resolves upload requests on application forms to local
// file paths, generating documents on demand where needed.
package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies what document an upload field is asking for.
type Kind string

const (
	KindResume      Kind = "resume"
	KindCoverLetter Kind = "cover_letter"
)

// KindForLabel decides what document a labelled upload field wants. Labels
// mentioning a cover or motivation letter get one; everything else gets
// the resume.
func KindForLabel(label string) Kind {
	lower := strings.ToLower(label)
	for _, marker := range []string{"cover", "motivation", "lettre"} {
		if strings.Contains(lower, marker) {
			return KindCoverLetter
		}
	}
	return KindResume
}

// Provisioner resolves a document kind to a local file path ready for
// upload.
type Provisioner interface {
	Provide(ctx context.Context, kind Kind) (string, error)
}

// MissingDocumentError indicates no document of the requested kind could
// be produced.
type MissingDocumentError struct {
	Kind  Kind
	Cause error
}

func (e *MissingDocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("no document available for %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("no document available for %s", e.Kind)
}

func (e *MissingDocumentError) Unwrap() error {
	return e.Cause
}

// CoverLetterWriter generates cover letter text for the current job.
type CoverLetterWriter interface {
	CoverLetter(ctx context.Context) (string, error)
}

// StaticProvisioner serves the configured resume file and generates cover
// letters through the oracle, caching the generated file per job.
type StaticProvisioner struct {
	resumePath string
	writer     CoverLetterWriter
	workDir    string
	coverPath  string
}

// NewStaticProvisioner creates a provisioner. writer may be nil, in which
// case cover letter requests fail with MissingDocumentError.
func NewStaticProvisioner(resumePath string, writer CoverLetterWriter) *StaticProvisioner {
	return &StaticProvisioner{
		resumePath: resumePath,
		writer:     writer,
		workDir:    os.TempDir(),
	}
}

// Reset clears the per-job cover letter cache. Call between applications.
func (p *StaticProvisioner) Reset() {
	p.coverPath = ""
}

// Provide returns a local path for the requested document kind.
func (p *StaticProvisioner) Provide(ctx context.Context, kind Kind) (string, error) {
	switch kind {
	case KindResume:
		if p.resumePath == "" {
			return "", &MissingDocumentError{Kind: kind}
		}
		if _, err := os.Stat(p.resumePath); err != nil {
			return "", &MissingDocumentError{Kind: kind, Cause: err}
		}
		return p.resumePath, nil
	case KindCoverLetter:
		return p.coverLetter(ctx)
	default:
		return "", &MissingDocumentError{Kind: kind}
	}
}

func (p *StaticProvisioner) coverLetter(ctx context.Context) (string, error) {
	if p.coverPath != "" {
		return p.coverPath, nil
	}
	if p.writer == nil {
		return "", &MissingDocumentError{Kind: KindCoverLetter}
	}

	text, err := p.writer.CoverLetter(ctx)
	if err != nil {
		return "", &MissingDocumentError{Kind: KindCoverLetter, Cause: err}
	}

	path := filepath.Join(p.workDir, fmt.Sprintf("cover_letter_%s.txt", uuid.New().String()))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", &MissingDocumentError{Kind: KindCoverLetter, Cause: err}
	}
	p.coverPath = path
	return path, nil
}
