package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/listing-assistant/internal/engine"
	"github.com/sells-group/listing-assistant/internal/model"
)

// RetrievalSolution accompanies every retrieval failure.
const RetrievalSolution = "Check your query syntax or the dataset structure."

const engineFailure = "The query engine could not answer this question."

// RetrievalError is a user-visible retrieval failure.
type RetrievalError struct {
	Message  string
	Solution string
}

func (e *RetrievalError) Error() string { return e.Message }

// Retrieval is the normalized result of a dataset query. Empty Records means
// no data.
type Retrieval struct {
	Records []model.Record
}

// NoData reports whether nothing usable came back.
func (r Retrieval) NoData() bool { return len(r.Records) == 0 }

// Retriever forwards queries to the query engine and normalizes answers.
type Retriever struct {
	engine    engine.Engine
	tableHint bool
}

// NewRetriever creates a Retriever. tableHint appends the table-format
// instruction to every query.
func NewRetriever(e engine.Engine, tableHint bool) *Retriever {
	return &Retriever{engine: e, tableHint: tableHint}
}

// Retrieve runs query against the dataset. Failures are *RetrievalError.
func (r *Retriever) Retrieve(ctx context.Context, query string) (Retrieval, error) {
	if r.tableHint {
		query += TableFormatHint
	}
	ans, err := r.engine.Query(ctx, query)
	if err != nil {
		zap.L().Warn("retrieve: engine failed", zap.Error(err))
		return Retrieval{}, &RetrievalError{Message: engineFailure, Solution: RetrievalSolution}
	}
	if ans.Error != "" {
		return Retrieval{}, &RetrievalError{Message: ans.Error, Solution: RetrievalSolution}
	}
	return Retrieval{Records: Normalize(ans.Value)}, nil
}

// Normalize maps an engine answer to records. nil, empty sequences and
// non-sequences yield no records. A scalar, or a sequence item that is not an
// object, becomes a {"value": x} row. Byte strings are read as text.
func Normalize(v any) []model.Record {
	switch x := v.(type) {
	case nil:
		return nil
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number, time.Time:
		return []model.Record{model.RecordOf([]string{"value"}, []any{x})}
	case []byte:
		return []model.Record{model.RecordOf([]string{"value"}, []any{string(x)})}
	case []model.Record:
		if len(x) == 0 {
			return nil
		}
		return x
	case []map[string]any:
		out := make([]model.Record, 0, len(x))
		for _, m := range x {
			out = append(out, model.RecordFromMap(m))
		}
		return nilIfEmpty(out)
	case []any:
		out := make([]model.Record, 0, len(x))
		for _, item := range x {
			switch row := item.(type) {
			case model.Record:
				out = append(out, row)
			case map[string]any:
				out = append(out, model.RecordFromMap(row))
			default:
				out = append(out, model.RecordOf([]string{"value"}, []any{row}))
			}
		}
		return nilIfEmpty(out)
	default:
		return nil
	}
}

func nilIfEmpty(rs []model.Record) []model.Record {
	if len(rs) == 0 {
		return nil
	}
	return rs
}
