package sqlite

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id          TEXT PRIMARY KEY,
    log_path        TEXT NOT NULL,
    output_path     TEXT NOT NULL,
    format          TEXT NOT NULL,
    started_at      TEXT NOT NULL,
    duration_ms     INTEGER NOT NULL,
    lines           INTEGER NOT NULL,
    irrelevant      INTEGER NOT NULL,
    unparseable     INTEGER NOT NULL,
    diffs           INTEGER NOT NULL,
    actions         INTEGER NOT NULL,
    redacted        INTEGER NOT NULL,
    retained        INTEGER NOT NULL,
    ops_applied     INTEGER NOT NULL,
    ops_skipped     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`
