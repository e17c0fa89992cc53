package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/po-tracker/internal/catalog"
	"github.com/joseph-ayodele/po-tracker/internal/common"
	"github.com/joseph-ayodele/po-tracker/internal/extract"
	"github.com/joseph-ayodele/po-tracker/internal/partnumber"
	"github.com/joseph-ayodele/po-tracker/internal/record"
	"github.com/joseph-ayodele/po-tracker/internal/repository"
)

type stubSource struct {
	text string
	err  error
}

func (s stubSource) Extract(_ context.Context, path string) (extract.SourceText, error) {
	if s.err != nil {
		return extract.SourceText{}, s.err
	}
	return extract.SourceText{Path: path, Text: s.text, Pages: 1, Method: "txt"}, nil
}

func newAssembler(t *testing.T) *record.Assembler {
	t.Helper()
	ext, err := extract.New(extract.DefaultConfig(), partnumber.NewResolver(catalog.Empty(), nil), nil, nil,
		extract.WithClock(func() time.Time { return time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)
	return record.NewAssembler(ext, nil, nil)
}

func TestProcessFile(t *testing.T) {
	ctx := context.Background()
	repo, err := repository.Open(ctx, common.DatabaseConfig{Driver: repository.DriverSQLite, DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	text := "Production Order: 123456789\n10.00 EA 09/03/2025\n"
	p := NewProcessor(nil, stubSource{text: text}, newAssembler(t), repo)

	res, err := p.ProcessFile(ctx, "/in/po-1.txt")
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	require.NotNil(t, res.Record.ProductionOrder)
	assert.Equal(t, "123456789", *res.Record.ProductionOrder)
	assert.Equal(t, "txt", res.Source.Method)
	require.NotEqual(t, uuid.Nil, res.StoredID)

	stored, err := repo.Get(ctx, res.StoredID)
	require.NoError(t, err)
	assert.Equal(t, "po-1.txt", stored.Source)
}

func TestProcessFileErrors(t *testing.T) {
	boom := errors.New("pdftotext failed")
	tests := []struct {
		name string
		src  stubSource
		path string
		is   error
	}{
		{name: "unsupported extension", src: stubSource{text: "x"}, path: "po.docx", is: common.ErrInvalidInput},
		{name: "source failure", src: stubSource{err: boom}, path: "po.pdf", is: boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProcessor(nil, tt.src, newAssembler(t), nil)
			res, err := p.ProcessFile(context.Background(), tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.is)
			assert.Nil(t, res.Record)
		})
	}
}

func TestProcessFileWithoutRepository(t *testing.T) {
	p := NewProcessor(nil, stubSource{text: "Q1"}, newAssembler(t), nil)
	res, err := p.ProcessFile(context.Background(), "po.txt")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, res.StoredID)
}
