package db

const initialSchemaV1 = `
CREATE TABLE IF NOT EXISTS users (
    id          TEXT PRIMARY KEY,
    name        TEXT UNIQUE NOT NULL,
    api_key     TEXT UNIQUE NOT NULL,
    role        TEXT DEFAULT 'user' CHECK(role IN ('admin', 'user')),
    created     TEXT NOT NULL,
    last_active TEXT
);

CREATE TABLE IF NOT EXISTS threads (
    id              TEXT PRIMARY KEY,
    commentable_id  TEXT NOT NULL,
    course_id       TEXT,
    title           TEXT NOT NULL,
    body            TEXT NOT NULL,
    author_id       TEXT,
    anonymous       INTEGER NOT NULL DEFAULT 0,
    created         TEXT NOT NULL,
    updated         TEXT NOT NULL,

    FOREIGN KEY (author_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_threads_commentable ON threads(commentable_id, created ASC);
CREATE INDEX IF NOT EXISTS idx_threads_author      ON threads(author_id);

CREATE TABLE IF NOT EXISTS comments (
    id          TEXT PRIMARY KEY,
    thread_id   TEXT NOT NULL,
    parent_id   TEXT,
    author_id   TEXT,
    anonymous   INTEGER NOT NULL DEFAULT 0,
    body        TEXT NOT NULL,
    endorsed    INTEGER NOT NULL DEFAULT 0,
    depth       INTEGER NOT NULL DEFAULT 0,
    created     TEXT NOT NULL,
    updated     TEXT NOT NULL,

    FOREIGN KEY (thread_id) REFERENCES threads(id),
    FOREIGN KEY (parent_id) REFERENCES comments(id),
    FOREIGN KEY (author_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_comments_thread ON comments(thread_id, created ASC);
CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments(parent_id);

CREATE TABLE IF NOT EXISTS thread_tags (
    thread_id   TEXT NOT NULL,
    tag         TEXT NOT NULL,
    PRIMARY KEY (thread_id, tag),
    FOREIGN KEY (thread_id) REFERENCES threads(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_thread_tags_tag ON thread_tags(tag);

CREATE TABLE IF NOT EXISTS votes (
    voter_id    TEXT NOT NULL,
    target_type TEXT NOT NULL CHECK(target_type IN ('thread', 'comment')),
    target_id   TEXT NOT NULL,
    created     TEXT NOT NULL,
    PRIMARY KEY (voter_id, target_type, target_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_target ON votes(target_type, target_id);

CREATE TABLE IF NOT EXISTS subscriptions (
    subscriber_id   TEXT NOT NULL,
    source_type     TEXT NOT NULL CHECK(source_type IN ('thread', 'comment')),
    source_id       TEXT NOT NULL,
    created         TEXT NOT NULL,
    PRIMARY KEY (subscriber_id, source_type, source_id)
);

CREATE INDEX IF NOT EXISTS idx_subscriptions_source ON subscriptions(source_type, source_id);

CREATE TABLE IF NOT EXISTS notifications (
    id              TEXT PRIMARY KEY,
    recipient_id    TEXT NOT NULL,
    source_type     TEXT NOT NULL,
    source_id       TEXT NOT NULL,
    kind            TEXT NOT NULL CHECK(kind IN ('new_comment')),
    actor_id        TEXT,
    preview         TEXT,
    created         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notif_recipient ON notifications(recipient_id, created DESC);

CREATE VIRTUAL TABLE IF NOT EXISTS threads_fts USING fts5(
    id UNINDEXED,
    title,
    body,
    tags,
    tokenize='porter unicode61'
);
`
