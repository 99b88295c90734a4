package replay

import (
	"context"
	"errors"
	"strings"
	"time"

	"tacticore/internal/app/ports"
)

var ErrInvalidRequest = errors.New("invalid replay request")

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type UseCase struct {
	Journal ports.DecisionJournal
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" || req.Limit < 0 {
		return Response{}, ErrInvalidRequest
	}
	limit := req.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	records, err := u.Journal.ListBySession(ctx, windowQuery(sessionID, limit, req.DecidedFrom, req.DecidedTo))
	if err != nil {
		return Response{}, err
	}

	out := Response{SessionID: sessionID, Records: make([]Record, 0, len(records))}
	for _, rec := range records {
		out.Records = append(out.Records, Record{
			RequestID:    rec.RequestID,
			Stage:        string(rec.Stage),
			ActionType:   string(rec.ActionType),
			ActionReason: rec.ActionReason,
			Confidence:   rec.Confidence,
			LatencyMs:    rec.LatencyMs,
			TimestampMs:  rec.TimestampMs,
			DecidedAt:    rec.DecidedAt,
		})
	}
	out.Summary = summarize(records)
	return out, nil
}

// windowQuery turns inclusive unix-second bounds into the journal's
// half-open window. Non-positive bounds stay open.
func windowQuery(sessionID string, limit int, from, to int64) ports.DecisionQuery {
	q := ports.DecisionQuery{SessionID: sessionID, Limit: limit}
	if from > 0 {
		q.From = time.Unix(from, 0)
	}
	if to > 0 {
		q.To = time.Unix(to+1, 0)
	}
	return q
}

func summarize(records []ports.DecisionRecord) Summary {
	s := Summary{ByStage: map[string]int{}}
	if len(records) == 0 {
		return s
	}
	var latency, confidence float64
	for _, rec := range records {
		s.ByStage[string(rec.Stage)]++
		latency += rec.LatencyMs
		confidence += rec.Confidence
	}
	n := float64(len(records))
	s.AvgLatencyMs = latency / n
	s.AvgConfidence = confidence / n
	return s
}
