package repo

import (
    "context"
    "errors"
    "time"

    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/rs/zerolog"
    "github.com/vmsaif/clickup-ai-analysis/internal/config"
)

type DB struct {
    Pool *pgxpool.Pool
    log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
    pool, err := pgxpool.New(ctx, cfg.DBDSN)
    if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
    if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
    return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

// EnsureSchema creates the run-history table. The pipeline itself is
// stateless; this table exists only for auditability of past runs.
func (r *Repository) EnsureSchema(ctx context.Context) error {
    const q = `
        CREATE TABLE IF NOT EXISTS runs(
            id          BIGSERIAL PRIMARY KEY,
            started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
            finished_at TIMESTAMPTZ,
            username    TEXT NOT NULL,
            task_count  INT NOT NULL DEFAULT 0,
            success     BOOLEAN NOT NULL DEFAULT false,
            error       TEXT,
            report_path TEXT
        )`
    _, err := r.db.Pool.Exec(ctx, q)
    return err
}

func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
    return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
    if !ok && err == nil { return errors.New("advisory unlock returned false") }
    return err
}

func (r *Repository) StartRun(ctx context.Context, username string) (int64, error) {
    const q = `INSERT INTO runs(started_at, username, success) VALUES(now(), $1, false) RETURNING id`
    var id int64
    if err := r.db.Pool.QueryRow(ctx, q, username).Scan(&id); err != nil { return 0, err }
    return id, nil
}

func (r *Repository) FinishRun(ctx context.Context, id int64, taskCount int, success bool, errMsg, reportPath string) error {
    const q = `UPDATE runs SET finished_at=now(), task_count=$2, success=$3, error=NULLIF($4,''), report_path=NULLIF($5,'') WHERE id=$1`
    _, err := r.db.Pool.Exec(ctx, q, id, taskCount, success, errMsg, reportPath)
    return err
}

type LastRun struct {
    ID         int64      `json:"id"`
    StartedAt  time.Time  `json:"started_at"`
    FinishedAt *time.Time `json:"finished_at,omitempty"`
    Username   string     `json:"username"`
    TaskCount  int        `json:"task_count"`
    Success    bool       `json:"success"`
    Error      *string    `json:"error,omitempty"`
    ReportPath *string    `json:"report_path,omitempty"`
}

func (r *Repository) GetLastRun(ctx context.Context) (*LastRun, error) {
    const q = `SELECT id, started_at, finished_at, username, task_count, success, error, report_path
        FROM runs ORDER BY id DESC LIMIT 1`
    var lr LastRun
    err := r.db.Pool.QueryRow(ctx, q).Scan(&lr.ID, &lr.StartedAt, &lr.FinishedAt, &lr.Username, &lr.TaskCount, &lr.Success, &lr.Error, &lr.ReportPath)
    if err != nil { return nil, err }
    return &lr, nil
}
