package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/listing-assistant/internal/llm"
	"github.com/sells-group/listing-assistant/internal/llm/mocks"
	"github.com/sells-group/listing-assistant/internal/model"
)

func TestClassifier_Classify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reply string
		want  model.Intent
	}{
		{"output", model.IntentOutput},
		{`"plot_stats"`, model.IntentPlotStats},
		{"`Geospatial_Plot`\n", model.IntentGeospatialPlot},
		{"'output'", model.IntentOutput},
		{"chart", model.Intent("chart")},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			t.Parallel()

			m := mocks.NewMockCompleter(t)
			m.On("Complete", mock.Anything, mock.MatchedBy(func(p llm.Prompt) bool {
				return p.Stage == "classify" &&
					p.MaxTokens == 10 &&
					p.Temperature == 0 &&
					strings.Contains(p.Text, `return ONLY one of: "output", "plot_stats", "geospatial_plot"`) &&
					strings.Contains(p.Text, `Query: "map flats near Hyde Park"`)
			})).Return(tt.reply, nil)

			got, err := NewClassifier(m, "haiku").Classify(context.Background(), "map flats near Hyde Park")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifier_CompletionError(t *testing.T) {
	t.Parallel()

	m := mocks.NewMockCompleter(t)
	m.On("Complete", mock.Anything, mock.Anything).Return("", fmt.Errorf("timeout"))

	_, err := NewClassifier(m, "haiku").Classify(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classify: complete")
}

func TestNormalizeLabel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "plot_stats", NormalizeLabel(" \"Plot_Stats\" "))
	assert.Equal(t, "output", NormalizeLabel("` output `"))
	assert.Equal(t, "", NormalizeLabel(`""`))
}

func TestClassifier_EmptyReplyIsEmptyLabel(t *testing.T) {
	t.Parallel()

	m := mocks.NewMockCompleter(t)
	m.On("Complete", mock.Anything, mock.Anything).
		Return("", eris.Wrap(llm.ErrEmptyCompletion, "llm: classify"))

	got, err := NewClassifier(m, "haiku").Classify(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, model.Intent(""), got)
	assert.False(t, got.Valid())
}
