package store

const schemaVersion = "1"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS files (
    repo TEXT NOT NULL,
    file_path TEXT NOT NULL,
    language TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    chunk_count INTEGER NOT NULL DEFAULT 0,
    documented_count INTEGER NOT NULL DEFAULT 0,
    indexed_at TIMESTAMP NOT NULL,
    PRIMARY KEY (repo, file_path)
);

CREATE TABLE IF NOT EXISTS chunks (
    id TEXT NOT NULL,
    repo TEXT NOT NULL,
    file_path TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    line_start INTEGER NOT NULL,
    line_end INTEGER NOT NULL,
    chunk_type TEXT NOT NULL,
    name TEXT NOT NULL,
    language TEXT NOT NULL,
    content TEXT NOT NULL,
    has_documentation INTEGER NOT NULL,
    confidence REAL NOT NULL,
    metadata TEXT NOT NULL,
    PRIMARY KEY (repo, file_path, content_hash),
    FOREIGN KEY (repo, file_path) REFERENCES files(repo, file_path) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_chunks_repo_doc ON chunks(repo, has_documentation);
CREATE INDEX IF NOT EXISTS idx_chunks_type ON chunks(chunk_type);
`
