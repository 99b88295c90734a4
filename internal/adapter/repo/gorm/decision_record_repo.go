package gormrepo

import (
	"context"

	"tacticore/internal/adapter/repo/gorm/model"
	"tacticore/internal/app/ports"
	"tacticore/internal/domain/decision"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DecisionRecordRepo struct {
	db *gorm.DB
}

func NewDecisionRecordRepo(db *gorm.DB) DecisionRecordRepo {
	return DecisionRecordRepo{db: db}
}

func (r DecisionRecordRepo) Append(ctx context.Context, rec ports.DecisionRecord) error {
	row := model.DecisionRecord{
		SessionID:    rec.SessionID,
		RequestID:    rec.RequestID,
		Stage:        string(rec.Stage),
		ActionType:   string(rec.ActionType),
		ActionReason: rec.ActionReason,
		Confidence:   rec.Confidence,
		LatencyMs:    rec.LatencyMs,
		DecidedAt:    rec.DecidedAt,
		SnapshotTsMs: rec.TimestampMs,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r DecisionRecordRepo) ListBySession(ctx context.Context, q ports.DecisionQuery) ([]ports.DecisionRecord, error) {
	rows := []model.DecisionRecord{}
	query := r.db.WithContext(ctx).Where(&model.DecisionRecord{SessionID: q.SessionID})
	if !q.From.IsZero() {
		query = query.Where("decided_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		query = query.Where("decided_at < ?", q.To)
	}
	query = query.Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{
				{Column: clause.Column{Name: "decided_at"}, Desc: true},
				{Column: clause.Column{Name: "id"}, Desc: true},
			},
		})
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]ports.DecisionRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.DecisionRecord{
			SessionID:    row.SessionID,
			RequestID:    row.RequestID,
			Stage:        decision.Stage(row.Stage),
			ActionType:   decision.ActionKind(row.ActionType),
			ActionReason: row.ActionReason,
			Confidence:   row.Confidence,
			LatencyMs:    row.LatencyMs,
			TimestampMs:  row.SnapshotTsMs,
			DecidedAt:    row.DecidedAt,
		})
	}
	return out, nil
}
