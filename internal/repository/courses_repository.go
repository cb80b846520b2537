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

type CoursesRepository struct {
	conn PgConnection
}

func NewCoursesRepo(cfg DBConfig) *CoursesRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for coursesRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for coursesRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &CoursesRepository{
		conn: pool,
	}
}

func NewCoursesRepoWithConn(conn PgConnection) *CoursesRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for coursesRepo: " + err.Error())
	}
	return &CoursesRepository{
		conn: conn,
	}
}

func (cr *CoursesRepository) Create(ctx context.Context, course *entity.Course) (uuid.UUID, error) {
	var id uuid.UUID
	row := cr.conn.QueryRow(ctx, `INSERT INTO courses (user_id, title, description, instructor, schedule, total_lessons) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`,
		course.UserID,
		course.Title,
		course.Description,
		course.Instructor,
		course.Schedule,
		course.TotalLessons,
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation
			case "23503":
				return uuid.UUID{}, errorvalues.ErrOwnerNotFound
			}
		}
		return uuid.UUID{}, errors.New("creating course error: " + err.Error())
	}
	return id, nil
}

func (cr *CoursesRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	var course entity.Course
	course.ID = id
	row := cr.conn.QueryRow(ctx, `SELECT user_id, title, description, instructor, schedule, progress, total_lessons, completed_lessons, status, created_at FROM courses WHERE id = $1;`, id)
	err := row.Scan(
		&course.UserID,
		&course.Title,
		&course.Description,
		&course.Instructor,
		&course.Schedule,
		&course.Progress,
		&course.TotalLessons,
		&course.CompletedLessons,
		&course.Status,
		&course.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrCourseNotFound
		}
		return nil, errors.New("getting course by id error: " + err.Error())
	}
	return &course, nil
}

func (cr *CoursesRepository) GetByUserID(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entity.Course, error) {
	rows, err := cr.conn.Query(ctx, `SELECT id, user_id, title, description, instructor, schedule, progress, total_lessons, completed_lessons, status, created_at FROM courses WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3;`, uid, limit, offset)
	if err != nil {
		return nil, errors.New("getting courses by uid error: " + err.Error())
	}
	defer rows.Close()
	courses := make([]*entity.Course, 0)
	for rows.Next() {
		c := entity.Course{}
		err = rows.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Instructor, &c.Schedule, &c.Progress, &c.TotalLessons, &c.CompletedLessons, &c.Status, &c.CreatedAt)
		if err != nil {
			return nil, errors.New("course row parsing error: " + err.Error())
		}
		courses = append(courses, &c)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected course rows error: " + rows.Err().Error())
	}
	return courses, nil
}

func (cr *CoursesRepository) UpdateProgress(ctx context.Context, course *entity.Course) error {
	ct, err := cr.conn.Exec(ctx, `UPDATE courses SET progress = $1, completed_lessons = $2, status = $3 WHERE id = $4;`,
		course.Progress,
		course.CompletedLessons,
		course.Status,
		course.ID,
	)
	if err != nil {
		return errors.New("updating course progress error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrCourseNotFound
	}
	return nil
}

func (cr *CoursesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := cr.conn.Exec(ctx, `DELETE FROM courses WHERE id = $1;`, id)
	if err != nil {
		return errors.New("deleting course error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrCourseNotFound
	}
	return nil
}
