package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Eventos filtrados",
		Headers: []string{"id", "title", "faculty"},
		Rows: []map[string]string{
			{"id": "e-1", "title": "Charla, IA", "faculty": "Ingeniería"},
			{"id": "e-2", "title": "Taller"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "id,title,faculty\ne-1,\"Charla, IA\",Ingeniería\ne-2,Taller,\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{Title: "x"})
	assert.Error(t, err)
}

func TestRenderersDescribeFormat(t *testing.T) {
	var renderers = []Renderer{NewCSVExporter(), NewPDFExporter()}
	assert.Equal(t, "csv", renderers[0].Extension())
	assert.Equal(t, "application/pdf", renderers[1].ContentType())
}
