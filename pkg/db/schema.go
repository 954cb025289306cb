package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- One row per crawl invocation
CREATE TABLE IF NOT EXISTS crawl_runs (
    run_id TEXT PRIMARY KEY,
    seed_url TEXT NOT NULL,
    view360_policy TEXT NOT NULL,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    listing_ok INTEGER DEFAULT 0,
    listing_failed INTEGER DEFAULT 0,
    detail_ok INTEGER DEFAULT 0,
    detail_failed INTEGER DEFAULT 0,
    duplicates INTEGER DEFAULT 0
);

-- Products: one row per article, replaced when the article is crawled again
CREATE TABLE IF NOT EXISTS products (
    article_id TEXT PRIMARY KEY,
    url TEXT NOT NULL,
    title TEXT NOT NULL,
    brand TEXT,
    price_current REAL NOT NULL,
    price_original REAL NOT NULL,
    sale_tag TEXT,
    in_stock BOOLEAN NOT NULL,
    stock_count INTEGER NOT NULL,
    main_image TEXT,
    variant_count INTEGER NOT NULL,
    run_id TEXT,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (run_id) REFERENCES crawl_runs(run_id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_products_run ON products(run_id);
CREATE INDEX IF NOT EXISTS idx_products_brand ON products(brand);

-- Breadcrumb section path, ordered
CREATE TABLE IF NOT EXISTS product_sections (
    article_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY (article_id, position),
    FOREIGN KEY (article_id) REFERENCES products(article_id) ON DELETE CASCADE
);

-- Marketing tags, ordered
CREATE TABLE IF NOT EXISTS product_tags (
    article_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    tag TEXT NOT NULL,
    PRIMARY KEY (article_id, position),
    FOREIGN KEY (article_id) REFERENCES products(article_id) ON DELETE CASCADE
);

-- Carousel, 360 and video URLs; kind is one of set, view360, video
CREATE TABLE IF NOT EXISTS product_images (
    article_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    position INTEGER NOT NULL,
    url TEXT NOT NULL,
    PRIMARY KEY (article_id, kind, position),
    FOREIGN KEY (article_id) REFERENCES products(article_id) ON DELETE CASCADE
);

-- Page-defined label/value table plus the reserved description key
CREATE TABLE IF NOT EXISTS product_metadata (
    article_id TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT,
    PRIMARY KEY (article_id, key),
    FOREIGN KEY (article_id) REFERENCES products(article_id) ON DELETE CASCADE
);

-- Every request the engine processed
CREATE TABLE IF NOT EXISTS url_accesses (
    access_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    url TEXT NOT NULL,
    kind TEXT NOT NULL,
    success BOOLEAN NOT NULL,
    status_code INTEGER,
    from_cache BOOLEAN DEFAULT 0,
    error_type TEXT,
    error_message TEXT,
    accessed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (run_id) REFERENCES crawl_runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_accesses_run ON url_accesses(run_id);
CREATE INDEX IF NOT EXISTS idx_accesses_error ON url_accesses(error_type) WHERE success = 0;
`
