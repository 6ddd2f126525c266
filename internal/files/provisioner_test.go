package files

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForLabel(t *testing.T) {
	assert.Equal(t, KindResume, KindForLabel("Upload your resume"))
	assert.Equal(t, KindResume, KindForLabel("CV (PDF only)"))
	assert.Equal(t, KindCoverLetter, KindForLabel("Cover letter"))
	assert.Equal(t, KindCoverLetter, KindForLabel("Attach your motivation letter"))
	assert.Equal(t, KindCoverLetter, KindForLabel("Lettre de motivation"))
}

func TestProvideResume(t *testing.T) {
	dir := t.TempDir()
	resumePath := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(resumePath, []byte("pdf"), 0o644))

	p := NewStaticProvisioner(resumePath, nil)
	got, err := p.Provide(context.Background(), KindResume)
	require.NoError(t, err)
	assert.Equal(t, resumePath, got)
}

func TestProvideResumeMissingFile(t *testing.T) {
	p := NewStaticProvisioner(filepath.Join(t.TempDir(), "nope.pdf"), nil)
	_, err := p.Provide(context.Background(), KindResume)
	var missing *MissingDocumentError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, KindResume, missing.Kind)
}

type fakeWriter struct {
	text  string
	err   error
	calls int
}

func (f *fakeWriter) CoverLetter(context.Context) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestProvideCoverLetterGeneratesOnce(t *testing.T) {
	writer := &fakeWriter{text: "Dear team,"}
	p := NewStaticProvisioner("", writer)
	p.workDir = t.TempDir()

	first, err := p.Provide(context.Background(), KindCoverLetter)
	require.NoError(t, err)
	second, err := p.Provide(context.Background(), KindCoverLetter)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same file reused within one job")
	assert.Equal(t, 1, writer.calls)

	content, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "Dear team,", string(content))
}

func TestProvideCoverLetterResetRegenerates(t *testing.T) {
	writer := &fakeWriter{text: "Dear team,"}
	p := NewStaticProvisioner("", writer)
	p.workDir = t.TempDir()

	_, err := p.Provide(context.Background(), KindCoverLetter)
	require.NoError(t, err)
	p.Reset()
	_, err = p.Provide(context.Background(), KindCoverLetter)
	require.NoError(t, err)
	assert.Equal(t, 2, writer.calls)
}

func TestProvideCoverLetterWithoutWriter(t *testing.T) {
	p := NewStaticProvisioner("", nil)
	_, err := p.Provide(context.Background(), KindCoverLetter)
	var missing *MissingDocumentError
	require.ErrorAs(t, err, &missing)
}

func TestProvideCoverLetterWriterFailure(t *testing.T) {
	writer := &fakeWriter{err: errors.New("oracle down")}
	p := NewStaticProvisioner("", writer)
	_, err := p.Provide(context.Background(), KindCoverLetter)
	var missing *MissingDocumentError
	require.ErrorAs(t, err, &missing)
	assert.ErrorContains(t, err, "oracle down")
}
