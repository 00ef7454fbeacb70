package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"github.com/tahcohcat/calmkid/internal/database"
	"github.com/tahcohcat/calmkid/internal/models"
)

const catalogColumns = `id, title, description, category, mood_tag, min_age, max_age, star_reward, duration_seconds, is_weekly`

// CatalogService reads activities, challenges and rewards. The catalog is
// read-only to everything but Import.
type CatalogService struct {
	base
}

func NewCatalogService(db *database.DB, opts Options) *CatalogService {
	return &CatalogService{base: newBase(db, opts)}
}

// Items returns the catalog of kind in catalog order.
func (s *CatalogService) Items(ctx context.Context, kind models.ItemKind) ([]models.CatalogItem, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	items := []models.CatalogItem{}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY rowid`, catalogColumns, t.catalog)
	if err := s.db.SelectContext(ctx, &items, query); err != nil {
		return nil, storeError("list "+t.catalog, err)
	}
	for i := range items {
		items[i].Kind = kind
	}
	return items, nil
}

func (s *CatalogService) Activities(ctx context.Context) ([]models.CatalogItem, error) {
	return s.Items(ctx, models.KindActivity)
}

func (s *CatalogService) Challenges(ctx context.Context) ([]models.CatalogItem, error) {
	return s.Items(ctx, models.KindChallenge)
}

// Item looks up one catalog entry; ErrNotFound when absent.
func (s *CatalogService) Item(ctx context.Context, kind models.ItemKind, id string) (*models.CatalogItem, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	var item models.CatalogItem
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, catalogColumns, t.catalog)
	err = s.db.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", kind, id, models.ErrNotFound)
	}
	if err != nil {
		return nil, storeError("get "+string(kind), err)
	}
	item.Kind = kind
	return &item, nil
}

func (s *CatalogService) Activity(ctx context.Context, id string) (*models.CatalogItem, error) {
	return s.Item(ctx, models.KindActivity, id)
}

func (s *CatalogService) Challenge(ctx context.Context, id string) (*models.CatalogItem, error) {
	return s.Item(ctx, models.KindChallenge, id)
}

func (s *CatalogService) Rewards(ctx context.Context) ([]models.Reward, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	rewards := []models.Reward{}
	if err := s.db.SelectContext(ctx, &rewards, `SELECT id, title, cost, type FROM rewards ORDER BY cost, rowid`); err != nil {
		return nil, storeError("list rewards", err)
	}
	return rewards, nil
}

func (s *CatalogService) Reward(ctx context.Context, id string) (*models.Reward, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	var r models.Reward
	err := s.db.GetContext(ctx, &r, `SELECT id, title, cost, type FROM rewards WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reward %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, storeError("get reward", err)
	}
	return &r, nil
}

// CatalogFile is the import document. JSON parses too since YAML is a superset.
type CatalogFile struct {
	Activities []models.CatalogItem `yaml:"activities"`
	Challenges []models.CatalogItem `yaml:"challenges"`
	Rewards    []models.Reward      `yaml:"rewards"`
}

type ImportSummary struct {
	Activities int `json:"activities"`
	Challenges int `json:"challenges"`
	Rewards    int `json:"rewards"`
}

// Import validates every entry first, then upserts them all in one
// transaction. Nothing is written if any entry is invalid.
func (s *CatalogService) Import(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	var file CatalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, models.Invalid("catalog", "cannot parse: %v", err)
	}

	for i := range file.Activities {
		if err := file.Activities[i].Validate(); err != nil {
			return nil, fmt.Errorf("activity %d: %w", i, err)
		}
	}
	for i := range file.Challenges {
		if err := file.Challenges[i].Validate(); err != nil {
			return nil, fmt.Errorf("challenge %d: %w", i, err)
		}
	}
	for i := range file.Rewards {
		if err := file.Rewards[i].Validate(); err != nil {
			return nil, fmt.Errorf("reward %d: %w", i, err)
		}
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, it := range file.Activities {
			if err := upsertItem(ctx, tx, "activities", it); err != nil {
				return err
			}
		}
		for _, it := range file.Challenges {
			if err := upsertItem(ctx, tx, "challenges", it); err != nil {
				return err
			}
		}
		for _, rw := range file.Rewards {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO rewards (id, title, cost, type) VALUES (?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET title = excluded.title, cost = excluded.cost, type = excluded.type
			`, rw.ID, rw.Title, rw.Cost, rw.Type); err != nil {
				return fmt.Errorf("upsert reward %s: %w", rw.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeError("import catalog", err)
	}

	sum := &ImportSummary{Activities: len(file.Activities), Challenges: len(file.Challenges), Rewards: len(file.Rewards)}
	s.log.Info(fmt.Sprintf("catalog imported: %d activities, %d challenges, %d rewards", sum.Activities, sum.Challenges, sum.Rewards))
	return sum, nil
}

func upsertItem(ctx context.Context, tx *sqlx.Tx, table string, it models.CatalogItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (:id, :title, :description, :category, :mood_tag, :min_age, :max_age, :star_reward, :duration_seconds, :is_weekly)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			mood_tag = excluded.mood_tag,
			min_age = excluded.min_age,
			max_age = excluded.max_age,
			star_reward = excluded.star_reward,
			duration_seconds = excluded.duration_seconds,
			is_weekly = excluded.is_weekly
	`, table, catalogColumns)
	if _, err := tx.NamedExecContext(ctx, query, it); err != nil {
		return fmt.Errorf("upsert %s %s: %w", table, it.ID, err)
	}
	return nil
}
