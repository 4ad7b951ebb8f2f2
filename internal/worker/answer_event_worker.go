package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/talentlens/talentlens-backend/internal/config"
)

const (
	AnswerEventBatchSize    = 50
	AnswerEventBatchTimeout = 2 * time.Second
	AnswerEventPollTimeout  = 1 * time.Second
)

// AnswerEventWorker drains the answer-event queue into the append-only
// answer_events audit table. The synchronous answer upsert overwrites
// resubmissions; this trail keeps every response ever recorded.
type AnswerEventWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewAnswerEventWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AnswerEventWorker {
	return &AnswerEventWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "answer_event_worker").Logger(),
	}
}

type answerEventPayload struct {
	SessionID  string    `json:"session_id"`
	QuestionID string    `json:"question_id"`
	Response   string    `json:"response"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *AnswerEventWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AnswerEventWorker started")

	batch := make([]*answerEventPayload, 0, AnswerEventBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= AnswerEventBatchSize || time.Since(lastFlush) >= AnswerEventBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AnswerEventPollTimeout, config.WorkerKey.AnswerEventsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p answerEventPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert wrapper with single-row fallback
// ----------------------------------------------------------------

func (w *AnswerEventWorker) flushSafe(ctx context.Context, batch []*answerEventPayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk answer event insert failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed — requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.AnswerEventsQueue, raw)
			}
		}
	}
}

// ----------------------------------------------------------------
// BULK PostgreSQL INSERT using UNNEST
// ----------------------------------------------------------------

func (w *AnswerEventWorker) bulkInsert(ctx context.Context, batch []*answerEventPayload) error {
	n := len(batch)

	sessionIDs := make([]uuid.UUID, 0, n)
	questionIDs := make([]uuid.UUID, 0, n)
	responses := make([]string, 0, n)
	recordedAts := make([]time.Time, 0, n)

	for _, p := range batch {
		sID, err := uuid.Parse(p.SessionID)
		if err != nil {
			return err
		}
		qID, err := uuid.Parse(p.QuestionID)
		if err != nil {
			return err
		}
		sessionIDs = append(sessionIDs, sID)
		questionIDs = append(questionIDs, qID)
		responses = append(responses, p.Response)
		recordedAts = append(recordedAts, p.RecordedAt)
	}

	query := `
		INSERT INTO answer_events (session_id, question_id, response, recorded_at)
		SELECT u.session_id, u.question_id, u.response, u.recorded_at
		FROM UNNEST(
			$1::uuid[],
			$2::uuid[],
			$3::text[],
			$4::timestamptz[]
		) AS u (session_id, question_id, response, recorded_at)
	`

	_, err := w.pool.Exec(ctx, query, sessionIDs, questionIDs, responses, recordedAts)
	return err
}

// ----------------------------------------------------------------
// FALLBACK single insert
// ----------------------------------------------------------------

func (w *AnswerEventWorker) persistSingle(ctx context.Context, p *answerEventPayload) error {
	sID, err := uuid.Parse(p.SessionID)
	if err != nil {
		return err
	}
	qID, err := uuid.Parse(p.QuestionID)
	if err != nil {
		return err
	}

	_, err = w.pool.Exec(ctx,
		`INSERT INTO answer_events (session_id, question_id, response, recorded_at)
		 VALUES ($1, $2, $3, $4)`,
		sID, qID, p.Response, p.RecordedAt,
	)

	return err
}
