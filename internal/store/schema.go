package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS projections (
    id                   TEXT PRIMARY KEY,
    scenario_name        TEXT NOT NULL,
    scenario_json        TEXT NOT NULL,
    created_at           TEXT NOT NULL,
    runs                 INTEGER NOT NULL,
    weeks                INTEGER NOT NULL,
    seed                 TEXT NOT NULL,
    initial_total        REAL NOT NULL,
    liquid_mean          REAL,
    liquid_stdev         REAL,
    liquid_below         REAL,
    total_mean           REAL,
    total_stdev          REAL,
    total_below          REAL
);

CREATE TABLE IF NOT EXISTS projection_accounts (
    projection_id        TEXT NOT NULL REFERENCES projections(id) ON DELETE CASCADE,
    account              TEXT NOT NULL,
    mean                 REAL,
    stdev                REAL,
    p10                  REAL,
    p50                  REAL,
    p90                  REAL,
    PRIMARY KEY (projection_id, account)
);

CREATE INDEX IF NOT EXISTS idx_projections_scenario ON projections(scenario_name, created_at);
CREATE INDEX IF NOT EXISTS idx_projections_created ON projections(created_at);
`
