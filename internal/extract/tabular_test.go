package extract

import (
	"testing"

	"github.com/botweaver/knowledge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDelimited_BasicCSV(t *testing.T) {
	out, err := RenderDelimited([]byte("Name,Age\nJohn,30\nJane,25"), ',')

	require.NoError(t, err)
	assert.Contains(t, out, "[Name: John]")
	assert.Contains(t, out, "[Age: 30]")
	assert.Contains(t, out, "[Name: Jane]")
	assert.Contains(t, out, "[Age: 25]")
}

func TestRenderDelimited_QuotedFields(t *testing.T) {
	out, err := RenderDelimited([]byte("Name,Note\n\"Smith, John\",\"said \"\"hi\"\"\""), ',')

	require.NoError(t, err)
	assert.Contains(t, out, "[Name: Smith, John]")
	assert.Contains(t, out, `[Note: said "hi"]`)
}

func TestRenderDelimited_EmptyFile(t *testing.T) {
	_, err := RenderDelimited([]byte(""), ',')
	assert.ErrorIs(t, err, domain.ErrEmptyFile)

	_, err = RenderDelimited([]byte("  \n \n"), ',')
	assert.ErrorIs(t, err, domain.ErrEmptyFile)
}

func TestRenderDelimited_HeaderOnly(t *testing.T) {
	_, err := RenderDelimited([]byte("Name,Age\n"), ',')

	assert.ErrorIs(t, err, domain.ErrNoDataRows)
}

func TestRenderDelimited_ShortRowsRenderEmpty(t *testing.T) {
	out, err := RenderDelimited([]byte("A,B,C\n1,2"), ',')

	require.NoError(t, err)
	assert.Contains(t, out, "[A: 1]")
	assert.Contains(t, out, "[B: 2]")
	assert.Contains(t, out, "[C: ]")
}

func TestRenderDelimited_SkipsBlankRows(t *testing.T) {
	out, err := RenderDelimited([]byte("A,B\n1,2\n,\n3,4"), ',')

	require.NoError(t, err)
	assert.Equal(t, "ROW: [A: 1] [B: 2]\nROW: [A: 3] [B: 4]", out)
}

func TestRenderDelimited_TSV(t *testing.T) {
	out, err := RenderDelimited([]byte("City\tPopulation\nIstanbul\t15462452"), '\t')

	require.NoError(t, err)
	assert.Contains(t, out, "[City: Istanbul]")
	assert.Contains(t, out, "[Population: 15462452]")
}

func TestRenderDelimited_TrimsFields(t *testing.T) {
	out, err := RenderDelimited([]byte("Name , Age \n John , 30 "), ',')

	require.NoError(t, err)
	assert.Contains(t, out, "[Name: John]")
	assert.Contains(t, out, "[Age: 30]")
}
