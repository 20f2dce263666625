package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cv-analyzer/internal/extract"
	"cv-analyzer/internal/storage"
)

func pdfText(t *testing.T, data []byte) string {
	t.Helper()
	text, err := extract.Extract(extract.FormatPDF, bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return text
}

func TestRenderContainsTitleAndBody(t *testing.T) {
	data, err := NewRenderer().Render("--- Analysis Report ---\nScore: 7/10")
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	text := pdfText(t, data)
	assert.Contains(t, text, "Analysis Report")
	assert.Contains(t, text, "Score: 7/10")
}

func TestRenderEmptyText(t *testing.T) {
	data, err := NewRenderer().Render(" \n\t")
	require.NoError(t, err)

	assert.Contains(t, pdfText(t, data), "No analysis report to convert.")
}

func TestRenderKeepsMarkupLiteral(t *testing.T) {
	data, err := NewRenderer().Render("<b>bold?</b> & <br/>")
	require.NoError(t, err)

	assert.Contains(t, pdfText(t, data), "<b>bold?</b> & <br/>")
}

func TestRenderLongTextFlowsOntoMorePages(t *testing.T) {
	long := strings.Repeat("A long line of model output that wraps.\n", 200)

	data, err := NewRenderer().Render(long)
	require.NoError(t, err)

	assert.Greater(t, bytes.Count(data, []byte("/Type /Page\n")), 1)
}

func TestServiceCreateUsesUniqueIDs(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	svc := NewService(NewRenderer(), store)

	first, err := svc.Create(ctx, "Score: 7/10")
	require.NoError(t, err)
	second, err := svc.Create(ctx, "Score: 7/10")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.ID.String()+".pdf", first.Key())

	rc, err := svc.Open(ctx, first.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, first.Size, len(data))
	assert.Contains(t, pdfText(t, data), "Score: 7/10")
}

func TestServiceCreateStoreFailure(t *testing.T) {
	store := new(storage.MockStore)
	store.On("Put", mock.Anything, mock.AnythingOfType("string"), mock.Anything, ContentType).
		Return(errors.New("disk full")).Once()
	svc := NewService(NewRenderer(), store)

	_, err := svc.Create(context.Background(), "text")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	store.AssertExpectations(t)
}

func TestServiceOpenMissing(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = NewService(NewRenderer(), store).Open(context.Background(), uuid.New())

	assert.ErrorIs(t, err, storage.ErrNotFound)
}
