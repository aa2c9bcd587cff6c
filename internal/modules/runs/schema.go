package runs

import "database/sql"

// RunsSchema holds the run-history table.
const RunsSchema = `
CREATE TABLE IF NOT EXISTS simulation_runs (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    months INTEGER NOT NULL,
    paths INTEGER NOT NULL,
    seed INTEGER NOT NULL,
    config_json TEXT NOT NULL,
    success_rate REAL NOT NULL,
    median_net_worth REAL NOT NULL,
    pessimistic_p5 REAL NOT NULL,
    optimistic_p95 REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_simulation_runs_created ON simulation_runs(created_at);
`

// InitSchema ensures the simulation_runs table exists.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(RunsSchema)
	return err
}
