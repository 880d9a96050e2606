//go:build integration

package containers

// schema mirrors the production tables. Kept here so integration tests run
// against a fresh database without an external migration step.
const schema = `
CREATE TABLE IF NOT EXISTS certification_records (
	id               UUID PRIMARY KEY,
	brand_number     TEXT NOT NULL UNIQUE,
	owner_name       TEXT NOT NULL,
	national_id      TEXT NOT NULL,
	breed            TEXT NOT NULL,
	purpose          TEXT NOT NULL,
	head_count       INTEGER NOT NULL,
	department       TEXT NOT NULL,
	municipality     TEXT NOT NULL,
	amount_centavos  BIGINT NOT NULL,
	status           TEXT NOT NULL,
	registered_at    TIMESTAMPTZ NOT NULL,
	processed_at     TIMESTAMPTZ,
	processing_hours INTEGER,
	version          INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_status ON certification_records (status);
CREATE INDEX IF NOT EXISTS idx_records_registered_at ON certification_records (registered_at);
CREATE INDEX IF NOT EXISTS idx_records_national_id ON certification_records (national_id);

CREATE TABLE IF NOT EXISTS audit_entries (
	id              UUID PRIMARY KEY,
	record_id       UUID NOT NULL REFERENCES certification_records (id),
	previous_status TEXT NOT NULL,
	new_status      TEXT NOT NULL,
	changed_at      TIMESTAMPTZ NOT NULL,
	actor           TEXT NOT NULL,
	notes           TEXT NOT NULL DEFAULT '',
	trace_id        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_audit_record_id ON audit_entries (record_id);
CREATE INDEX IF NOT EXISTS idx_audit_changed_at ON audit_entries (changed_at);

CREATE TABLE IF NOT EXISTS kpi_snapshots (
	snapshot_date        DATE PRIMARY KEY,
	registered_count     INTEGER NOT NULL,
	approved_count       INTEGER NOT NULL,
	rejected_count       INTEGER NOT NULL,
	pending_count        INTEGER NOT NULL,
	in_review_count      INTEGER NOT NULL,
	approval_rate        DOUBLE PRECISION NOT NULL,
	avg_processing_hours DOUBLE PRECISION NOT NULL,
	head_count_total     BIGINT NOT NULL,
	avg_head_per_record  DOUBLE PRECISION NOT NULL,
	amount_total         BIGINT NOT NULL,
	purpose_meat         INTEGER NOT NULL,
	purpose_dairy        INTEGER NOT NULL,
	purpose_dual         INTEGER NOT NULL,
	purpose_breeding     INTEGER NOT NULL,
	dept_santa_cruz      INTEGER NOT NULL,
	dept_beni            INTEGER NOT NULL,
	dept_la_paz          INTEGER NOT NULL,
	dept_other           INTEGER NOT NULL,
	logo_count           INTEGER NOT NULL,
	logo_success_rate    DOUBLE PRECISION NOT NULL,
	avg_logo_seconds     DOUBLE PRECISION NOT NULL,
	computed_at          TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS logo_generations (
	id                 UUID PRIMARY KEY,
	record_id          UUID REFERENCES certification_records (id),
	success            BOOLEAN NOT NULL,
	generation_seconds DOUBLE PRECISION NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL
);
`
