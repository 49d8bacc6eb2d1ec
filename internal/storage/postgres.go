package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"unify/internal/domain"
	"unify/internal/match"
)

// PostgresStore persists the identity graph and decision log in PostgreSQL.
// Multi-entity mutations run in a transaction so partial merges and orphaned
// decisions cannot occur.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const personColumns = `p.id, p.display_name, p.data_quality, p.is_canonical, p.provenance, p.created_at`

// ----------------------------------------------------------------------------
// Graph
// ----------------------------------------------------------------------------

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) ([]domain.CanonicalPerson, error) {
	return s.findByIdentifier(ctx, domain.IdentifierEmail, email)
}

func (s *PostgresStore) FindByPhone(ctx context.Context, phone string) ([]domain.CanonicalPerson, error) {
	return s.findByIdentifier(ctx, domain.IdentifierPhone, phone)
}

func (s *PostgresStore) findByIdentifier(ctx context.Context, kind domain.IdentifierKind, value string) ([]domain.CanonicalPerson, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+personColumns+`
		FROM persons p
		JOIN identifiers i ON i.person_id = p.id
		WHERE i.kind = $1 AND i.value = $2
		  AND p.is_canonical AND p.data_quality <> 'garbage'
		ORDER BY p.created_at`, string(kind), value)
	if err != nil {
		return nil, fmt.Errorf("find by %s: %w", kind, err)
	}
	return s.collectPersons(ctx, rows)
}

func (s *PostgresStore) FindByNameTokens(ctx context.Context, firstToken, lastToken string) ([]domain.CanonicalPerson, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+personColumns+`
		FROM persons p
		WHERE p.name_first_token = $1 AND p.name_last_token = $2
		  AND p.is_canonical AND p.data_quality <> 'garbage'
		ORDER BY p.created_at`, firstToken, lastToken)
	if err != nil {
		return nil, fmt.Errorf("find by name tokens: %w", err)
	}
	return s.collectPersons(ctx, rows)
}

func (s *PostgresStore) GetPerson(ctx context.Context, id uuid.UUID) (domain.CanonicalPerson, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+personColumns+`
		FROM persons p WHERE p.id = $1`, id)
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CanonicalPerson{}, ErrNotFound
		}
		return domain.CanonicalPerson{}, fmt.Errorf("get person: %w", err)
	}
	if err := s.loadIdentifiers(ctx, []*domain.CanonicalPerson{&p}); err != nil {
		return domain.CanonicalPerson{}, err
	}
	return p, nil
}

func (s *PostgresStore) ResolveRoot(ctx context.Context, id uuid.UUID) (domain.CanonicalPerson, error) {
	current := id
	var visited []uuid.UUID
	for {
		p, err := s.GetPerson(ctx, current)
		if err != nil {
			return domain.CanonicalPerson{}, err
		}
		if p.IsCanonical {
			if len(visited) > 1 {
				s.compressPath(ctx, visited, p.ID)
			}
			return p, nil
		}

		var target uuid.UUID
		err = s.db.QueryRowContext(ctx,
			`SELECT target_person_id FROM merge_edges WHERE source_person_id = $1`,
			current).Scan(&target)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Tombstone without an edge; return it rather than loop.
				return p, nil
			}
			return domain.CanonicalPerson{}, fmt.Errorf("resolve root: %w", err)
		}
		visited = append(visited, current)
		current = target
	}
}

// compressPath re-points visited edges directly at the root. Best effort; a
// failure leaves a longer chain, not a broken one.
func (s *PostgresStore) compressPath(ctx context.Context, visited []uuid.UUID, root uuid.UUID) {
	ids := make([]string, len(visited))
	for i, v := range visited {
		ids[i] = v.String()
	}
	_, _ = s.db.ExecContext(ctx, `
		UPDATE merge_edges SET target_person_id = $1
		WHERE source_person_id = ANY($2) AND target_person_id <> $1`,
		root, pq.Array(ids))
}

func (s *PostgresStore) CreatePersonWithDecision(ctx context.Context, person domain.CanonicalPerson, rec domain.DecisionRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertPerson(ctx, tx, person); err != nil {
			return err
		}
		for _, ident := range person.Identifiers {
			if err := insertIdentifier(ctx, tx, person.ID, ident); err != nil {
				return err
			}
		}
		return insertDecision(ctx, tx, rec)
	})
}

func (s *PostgresStore) LinkIdentifiersWithDecision(ctx context.Context, personID uuid.UUID, idents []domain.Identifier, rec domain.DecisionRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, ident := range idents {
			if ident.Value == "" {
				continue
			}
			if err := insertIdentifier(ctx, tx, personID, ident); err != nil {
				return err
			}
		}
		return insertDecision(ctx, tx, rec)
	})
}

func (s *PostgresStore) AppendDecision(ctx context.Context, rec domain.DecisionRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return insertDecision(ctx, tx, rec)
	})
}

// ----------------------------------------------------------------------------
// ReviewLog
// ----------------------------------------------------------------------------

const decisionColumns = `d.id, d.source_system, d.staged_name, d.staged_email, d.staged_phone,
	d.outcome, d.matched_person_id, d.best_candidate_id, d.similarity, d.confidence,
	d.evidence, d.data_quality, d.created_at`

func (s *PostgresStore) GetDecision(ctx context.Context, id uuid.UUID) (domain.DecisionRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+decisionColumns+` FROM decisions d WHERE d.id = $1`, id)
	rec, err := scanDecision(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DecisionRecord{}, ErrNotFound
		}
		return domain.DecisionRecord{}, fmt.Errorf("get decision: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) GetResolution(ctx context.Context, decisionID uuid.UUID) (domain.ReviewResolution, error) {
	var (
		res    domain.ReviewResolution
		target uuid.NullUUID
		action string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT decision_id, action, target_person_id, performed_by, created_at
		FROM resolutions WHERE decision_id = $1`, decisionID).
		Scan(&res.DecisionID, &action, &target, &res.PerformedBy, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReviewResolution{}, ErrNotFound
		}
		return domain.ReviewResolution{}, fmt.Errorf("get resolution: %w", err)
	}
	res.Action = domain.ReviewAction(action)
	if target.Valid {
		res.TargetPersonID = &target.UUID
	}
	return res, nil
}

func (s *PostgresStore) ListPending(ctx context.Context, limit, offset int) ([]domain.DecisionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+decisionColumns+`
		FROM decisions d
		LEFT JOIN resolutions r ON r.decision_id = d.id
		WHERE d.outcome = 'pending_review' AND r.decision_id IS NULL
		ORDER BY d.created_at
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	var out []domain.DecisionRecord
	for rows.Next() {
		rec, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending decision: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountPending(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM decisions d
		LEFT JOIN resolutions r ON r.decision_id = d.id
		WHERE d.outcome = 'pending_review' AND r.decision_id IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Promote(ctx context.Context, personID uuid.UUID, res domain.ReviewResolution) error {
	return s.setQualityWithResolution(ctx, personID, domain.QualityValid, res)
}

func (s *PostgresStore) MarkGarbage(ctx context.Context, personID uuid.UUID, res domain.ReviewResolution) error {
	return s.setQualityWithResolution(ctx, personID, domain.QualityGarbage, res)
}

func (s *PostgresStore) setQualityWithResolution(ctx context.Context, personID uuid.UUID, quality domain.DataQuality, res domain.ReviewResolution) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE persons SET data_quality = $1 WHERE id = $2`, string(quality), personID)
		if err != nil {
			return fmt.Errorf("set data quality: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("set data quality: %w", err)
		}
		if affected == 0 {
			return ErrNotFound
		}
		return insertResolution(ctx, tx, res)
	})
}

func (s *PostgresStore) CreatePersonWithResolution(ctx context.Context, person domain.CanonicalPerson, res domain.ReviewResolution) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertPerson(ctx, tx, person); err != nil {
			return err
		}
		for _, ident := range person.Identifiers {
			if err := insertIdentifier(ctx, tx, person.ID, ident); err != nil {
				return err
			}
		}
		return insertResolution(ctx, tx, res)
	})
}

func (s *PostgresStore) LinkIdentifiersWithResolution(ctx context.Context, personID uuid.UUID, idents []domain.Identifier, res domain.ReviewResolution) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, ident := range idents {
			if ident.Value == "" {
				continue
			}
			if err := insertIdentifier(ctx, tx, personID, ident); err != nil {
				return err
			}
		}
		return insertResolution(ctx, tx, res)
	})
}

func (s *PostgresStore) Merge(ctx context.Context, edge domain.MergeEdge, res domain.ReviewResolution) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var targetCanonical bool
		err := tx.QueryRowContext(ctx,
			`SELECT is_canonical FROM persons WHERE id = $1 FOR UPDATE`,
			edge.TargetPersonID).Scan(&targetCanonical)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock merge target: %w", err)
		}
		if !targetCanonical {
			return ErrNotCanonical
		}

		var sourceCanonical bool
		err = tx.QueryRowContext(ctx,
			`SELECT is_canonical FROM persons WHERE id = $1 FOR UPDATE`,
			edge.SourcePersonID).Scan(&sourceCanonical)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock merge source: %w", err)
		}
		if !sourceCanonical {
			var existingTarget uuid.UUID
			err = tx.QueryRowContext(ctx,
				`SELECT target_person_id FROM merge_edges WHERE source_person_id = $1`,
				edge.SourcePersonID).Scan(&existingTarget)
			if err == nil && existingTarget == edge.TargetPersonID {
				// Retried merge into the same target is a no-op.
				return insertResolution(ctx, tx, res)
			}
			return ErrNotCanonical
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE persons SET is_canonical = FALSE, data_quality = 'non_canonical'
			WHERE id = $1`, edge.SourcePersonID)
		if err != nil {
			return fmt.Errorf("tombstone person: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO identifiers (person_id, kind, value, source)
			SELECT $1, kind, value, source FROM identifiers WHERE person_id = $2
			ON CONFLICT DO NOTHING`, edge.TargetPersonID, edge.SourcePersonID)
		if err != nil {
			return fmt.Errorf("repoint identifiers: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO merge_edges (source_person_id, target_person_id, reason, performed_by, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			edge.SourcePersonID, edge.TargetPersonID, edge.Reason, edge.PerformedBy, edge.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert merge edge: %w", err)
		}
		return insertResolution(ctx, tx, res)
	})
}

// ----------------------------------------------------------------------------
// SnapshotReader
// ----------------------------------------------------------------------------

func (s *PostgresStore) CountPersons(ctx context.Context) (int, int, error) {
	var total, canonical int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_canonical) FROM persons`).
		Scan(&total, &canonical)
	if err != nil {
		return 0, 0, fmt.Errorf("count persons: %w", err)
	}
	return total, canonical, nil
}

func (s *PostgresStore) CountByQuality(ctx context.Context) (map[domain.DataQuality]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data_quality, COUNT(*) FROM persons GROUP BY data_quality`)
	if err != nil {
		return nil, fmt.Errorf("count by quality: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.DataQuality]int)
	for rows.Next() {
		var quality string
		var count int
		if err := rows.Scan(&quality, &count); err != nil {
			return nil, fmt.Errorf("scan quality count: %w", err)
		}
		out[domain.DataQuality(quality)] = count
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountPersonsCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM persons WHERE created_at > $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count persons created since: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CountDecisionsByOutcome(ctx context.Context) (map[domain.Outcome]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT outcome, COUNT(*) FROM decisions GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("count decisions by outcome: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.Outcome]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		out[domain.Outcome(outcome)] = count
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountDecisionsSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM decisions WHERE created_at > $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count decisions since: %w", err)
	}
	return count, nil
}

// ----------------------------------------------------------------------------
// Sources
// ----------------------------------------------------------------------------

func (s *PostgresStore) GetSource(ctx context.Context, sourceSystem string) (domain.SourceConfidence, error) {
	var sc domain.SourceConfidence
	err := s.db.QueryRowContext(ctx, `
		SELECT source_system, score, description, updated_at
		FROM sources WHERE source_system = $1`, sourceSystem).
		Scan(&sc.SourceSystem, &sc.Score, &sc.Description, &sc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SourceConfidence{}, ErrNotFound
		}
		return domain.SourceConfidence{}, fmt.Errorf("get source: %w", err)
	}
	return sc, nil
}

func (s *PostgresStore) ListSources(ctx context.Context) ([]domain.SourceConfidence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_system, score, description, updated_at
		FROM sources ORDER BY source_system`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var out []domain.SourceConfidence
	for rows.Next() {
		var sc domain.SourceConfidence
		if err := rows.Scan(&sc.SourceSystem, &sc.Score, &sc.Description, &sc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpsertSource(ctx context.Context, sc domain.SourceConfidence) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (source_system, score, description, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source_system) DO UPDATE
		SET score = EXCLUDED.score,
		    description = EXCLUDED.description,
		    updated_at = EXCLUDED.updated_at`,
		sc.SourceSystem, sc.Score, sc.Description, sc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert source: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteSource(ctx context.Context, sourceSystem string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sources WHERE source_system = $1`, sourceSystem)
	if err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ----------------------------------------------------------------------------
// helpers
// ----------------------------------------------------------------------------

func (s *PostgresStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (domain.CanonicalPerson, error) {
	var p domain.CanonicalPerson
	var quality string
	err := row.Scan(&p.ID, &p.DisplayName, &quality, &p.IsCanonical, &p.Provenance, &p.CreatedAt)
	if err != nil {
		return domain.CanonicalPerson{}, err
	}
	p.DataQuality = domain.DataQuality(quality)
	return p, nil
}

func scanDecision(row rowScanner) (domain.DecisionRecord, error) {
	var (
		rec       domain.DecisionRecord
		outcome   string
		quality   string
		matched   uuid.NullUUID
		candidate uuid.NullUUID
		evidence  []byte
	)
	err := row.Scan(&rec.ID, &rec.SourceSystem, &rec.StagedName, &rec.StagedEmail, &rec.StagedPhone,
		&outcome, &matched, &candidate, &rec.Similarity, &rec.Confidence,
		&evidence, &quality, &rec.CreatedAt)
	if err != nil {
		return domain.DecisionRecord{}, err
	}
	rec.Outcome = domain.Outcome(outcome)
	rec.DataQuality = domain.DataQuality(quality)
	if matched.Valid {
		rec.MatchedPersonID = &matched.UUID
	}
	if candidate.Valid {
		rec.BestCandidateID = &candidate.UUID
	}
	if len(evidence) > 0 {
		if err := json.Unmarshal(evidence, &rec.Evidence); err != nil {
			return domain.DecisionRecord{}, fmt.Errorf("decode evidence: %w", err)
		}
	}
	return rec, nil
}

func (s *PostgresStore) collectPersons(ctx context.Context, rows *sql.Rows) ([]domain.CanonicalPerson, error) {
	defer rows.Close()

	var persons []*domain.CanonicalPerson
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.loadIdentifiers(ctx, persons); err != nil {
		return nil, err
	}

	out := make([]domain.CanonicalPerson, len(persons))
	for i, p := range persons {
		out[i] = *p
	}
	return out, nil
}

func (s *PostgresStore) loadIdentifiers(ctx context.Context, persons []*domain.CanonicalPerson) error {
	if len(persons) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*domain.CanonicalPerson, len(persons))
	ids := make([]string, len(persons))
	for i, p := range persons {
		byID[p.ID] = p
		ids[i] = p.ID.String()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT person_id, kind, value, source
		FROM identifiers WHERE person_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load identifiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var personID uuid.UUID
		var kind string
		var ident domain.Identifier
		if err := rows.Scan(&personID, &kind, &ident.Value, &ident.Source); err != nil {
			return fmt.Errorf("scan identifier: %w", err)
		}
		ident.Kind = domain.IdentifierKind(kind)
		if p, ok := byID[personID]; ok {
			p.Identifiers = append(p.Identifiers, ident)
		}
	}
	return rows.Err()
}

func insertPerson(ctx context.Context, tx *sql.Tx, p domain.CanonicalPerson) error {
	first, last := blockingTokens(p.DisplayName)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO persons (id, display_name, name_first_token, name_last_token,
			data_quality, is_canonical, provenance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.DisplayName, first, last, string(p.DataQuality), p.IsCanonical, p.Provenance, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

func insertIdentifier(ctx context.Context, tx *sql.Tx, personID uuid.UUID, ident domain.Identifier) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO identifiers (person_id, kind, value, source)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING`,
		personID, string(ident.Kind), ident.Value, ident.Source)
	if err != nil {
		return fmt.Errorf("insert identifier: %w", err)
	}
	return nil
}

func insertDecision(ctx context.Context, tx *sql.Tx, rec domain.DecisionRecord) error {
	evidence, err := json.Marshal(rec.Evidence)
	if err != nil {
		return fmt.Errorf("encode evidence: %w", err)
	}
	var matched, candidate any
	if rec.MatchedPersonID != nil {
		matched = *rec.MatchedPersonID
	}
	if rec.BestCandidateID != nil {
		candidate = *rec.BestCandidateID
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO decisions (id, source_system, staged_name, staged_email, staged_phone,
			outcome, matched_person_id, best_candidate_id, similarity, confidence,
			evidence, data_quality, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.SourceSystem, rec.StagedName, rec.StagedEmail, rec.StagedPhone,
		string(rec.Outcome), matched, candidate, rec.Similarity, rec.Confidence,
		evidence, string(rec.DataQuality), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

func insertResolution(ctx context.Context, tx *sql.Tx, res domain.ReviewResolution) error {
	var target any
	if res.TargetPersonID != nil {
		target = *res.TargetPersonID
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO resolutions (decision_id, action, target_person_id, performed_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (decision_id) DO NOTHING`,
		res.DecisionID, string(res.Action), target, res.PerformedBy, res.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert resolution: %w", err)
	}
	return nil
}

func blockingTokens(displayName string) (string, string) {
	tokens := match.NameTokens(displayName)
	if len(tokens) == 0 {
		return "", ""
	}
	return tokens[0], tokens[len(tokens)-1]
}
