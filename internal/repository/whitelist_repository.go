package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/limbo/focusbear/internal/error_values"
	"github.com/limbo/focusbear/pkg/cleanup"
	"github.com/limbo/focusbear/pkg/entity"
)

type WhitelistRepository struct {
	conn PgConnection
}

func NewWhitelistRepo(cfg DBConfig) *WhitelistRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for whitelistRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for whitelistRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &WhitelistRepository{
		conn: pool,
	}
}

func NewWhitelistRepoWithConn(conn PgConnection) *WhitelistRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for whitelistRepo: " + err.Error())
	}
	return &WhitelistRepository{
		conn: conn,
	}
}

func (wr *WhitelistRepository) Create(ctx context.Context, item *entity.WhitelistItem) (uuid.UUID, error) {
	tx, err := wr.conn.Begin(ctx)
	if err != nil {
		return uuid.UUID{}, errors.New("beginning whitelist tx error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	_, err = tx.Exec(ctx, `INSERT INTO focus_whitelist (user_id, item_type, value, description, category) VALUES ($1, $2, $3, $4, $5);`,
		item.UserID,
		item.ItemType,
		item.Value,
		item.Description,
		item.Category,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// Unique violation
			case "23505":
				return uuid.UUID{}, errorvalues.ErrWhitelistItemExists
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrOwnerNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating whitelist item error: " + err.Error())
	}
	var id uuid.UUID
	row := tx.QueryRow(ctx, `SELECT id FROM focus_whitelist WHERE user_id = $1 AND value = $2;`, item.UserID, item.Value)
	if err = row.Scan(&id); err != nil {
		return uuid.UUID{}, errors.New("getting created whitelist item id error: " + err.Error())
	}
	if err = tx.Commit(ctx); err != nil {
		return uuid.UUID{}, errors.New("committing whitelist tx error: " + err.Error())
	}
	return id, nil
}

func (wr *WhitelistRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.WhitelistItem, error) {
	var item entity.WhitelistItem
	item.ID = id
	row := wr.conn.QueryRow(ctx, `SELECT user_id, item_type, value, description, category, created_at FROM focus_whitelist WHERE id = $1;`, id)
	err := row.Scan(&item.UserID, &item.ItemType, &item.Value, &item.Description, &item.Category, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrWhitelistItemNotFound
		}
		return nil, errors.New("getting whitelist item by id error: " + err.Error())
	}
	return &item, nil
}

func (wr *WhitelistRepository) GetByUserID(ctx context.Context, uid uuid.UUID) ([]entity.WhitelistItem, error) {
	rows, err := wr.conn.Query(ctx, `SELECT id, user_id, item_type, value, description, category, created_at FROM focus_whitelist WHERE user_id = $1;`, uid)
	if err != nil {
		return nil, errors.New("getting whitelist by uid error: " + err.Error())
	}
	defer rows.Close()
	items := make([]entity.WhitelistItem, 0)
	for rows.Next() {
		item := entity.WhitelistItem{}
		err = rows.Scan(&item.ID, &item.UserID, &item.ItemType, &item.Value, &item.Description, &item.Category, &item.CreatedAt)
		if err != nil {
			return nil, errors.New("whitelist row parsing error: " + err.Error())
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected whitelist rows error: " + rows.Err().Error())
	}
	return items, nil
}

func (wr *WhitelistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := wr.conn.Exec(ctx, `DELETE FROM focus_whitelist WHERE id = $1;`, id)
	if err != nil {
		return errors.New("deleting whitelist item error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrWhitelistItemNotFound
	}
	return nil
}
