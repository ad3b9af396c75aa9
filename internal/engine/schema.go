package engine

// Schema DDL. All statements are idempotent (IF NOT EXISTS) so applying the
// schema on every bootstrap is safe whether the engine started fresh or from
// a restored snapshot.
//
// Foreign keys are declared for documentation but PRAGMA foreign_keys stays
// off: callers own referential integrity, and cascades are implemented in
// the repository layer for forms->form_fields and divisions->contacts only.
const (
	createUsers = `CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    uid TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    phone TEXT,
    email TEXT,
    password_hash TEXT,
    role TEXT NOT NULL,
    preferred_language TEXT NOT NULL DEFAULT 'en',
    bookmarks TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createCategories = `CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name_en TEXT NOT NULL,
    name_hi TEXT,
    name_mr TEXT,
    description_en TEXT NOT NULL DEFAULT '',
    description_hi TEXT,
    description_mr TEXT,
    icon TEXT,
    display_order INTEGER NOT NULL DEFAULT 0,
    form_count INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createInstitutions = `CREATE TABLE IF NOT EXISTS institutions (
    id TEXT PRIMARY KEY,
    name_en TEXT NOT NULL,
    name_hi TEXT,
    name_mr TEXT,
    description_en TEXT NOT NULL DEFAULT '',
    description_hi TEXT,
    description_mr TEXT,
    type TEXT NOT NULL,
    parent_id TEXT,
    contact_email TEXT,
    contact_phone TEXT,
    website TEXT,
    form_count INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (parent_id) REFERENCES institutions(id)
);`

	createForms = `CREATE TABLE IF NOT EXISTS forms (
    id TEXT PRIMARY KEY,
    title_en TEXT NOT NULL,
    title_hi TEXT,
    title_mr TEXT,
    description_en TEXT NOT NULL DEFAULT '',
    description_hi TEXT,
    description_mr TEXT,
    category_id TEXT NOT NULL,
    institution_id TEXT NOT NULL,
    languages TEXT NOT NULL DEFAULT '["en"]',
    pdf_variants TEXT NOT NULL DEFAULT '{}',
    thumbnails TEXT NOT NULL DEFAULT '{}',
    status TEXT NOT NULL DEFAULT 'draft',
    verification_level INTEGER NOT NULL DEFAULT 0,
    view_count INTEGER NOT NULL DEFAULT 0,
    download_count INTEGER NOT NULL DEFAULT 0,
    fill_count INTEGER NOT NULL DEFAULT 0,
    created_by TEXT,
    created_at TEXT NOT NULL,
    updated_by TEXT,
    updated_at TEXT NOT NULL,
    published_at TEXT,
    FOREIGN KEY (category_id) REFERENCES categories(id),
    FOREIGN KEY (institution_id) REFERENCES institutions(id)
);`

	createFormFields = `CREATE TABLE IF NOT EXISTS form_fields (
    id TEXT PRIMARY KEY,
    form_id TEXT NOT NULL,
    field_type TEXT NOT NULL,
    label_en TEXT NOT NULL,
    label_hi TEXT,
    label_mr TEXT,
    required INTEGER NOT NULL DEFAULT 0,
    validation TEXT NOT NULL DEFAULT '{}',
    options TEXT NOT NULL DEFAULT '[]',
    position TEXT NOT NULL DEFAULT '{}',
    position_variants TEXT NOT NULL DEFAULT '{}',
    order_index INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (form_id) REFERENCES forms(id)
);`

	createDivisions = `CREATE TABLE IF NOT EXISTS divisions (
    id TEXT PRIMARY KEY,
    institution_id TEXT NOT NULL,
    parent_id TEXT,
    name_en TEXT NOT NULL,
    name_hi TEXT,
    name_mr TEXT,
    order_index INTEGER NOT NULL DEFAULT 0,
    contact_count INTEGER NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (institution_id) REFERENCES institutions(id),
    FOREIGN KEY (parent_id) REFERENCES divisions(id)
);`

	createContacts = `CREATE TABLE IF NOT EXISTS contacts (
    id TEXT PRIMARY KEY,
    division_id TEXT NOT NULL,
    institution_id TEXT NOT NULL,
    name TEXT NOT NULL,
    title_en TEXT NOT NULL DEFAULT '',
    title_hi TEXT,
    title_mr TEXT,
    phone TEXT,
    email TEXT,
    order_index INTEGER NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (division_id) REFERENCES divisions(id)
);`

	createSubmissions = `CREATE TABLE IF NOT EXISTS submissions (
    id TEXT PRIMARY KEY,
    form_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    data TEXT NOT NULL DEFAULT '{}',
    submitted_at TEXT NOT NULL,
    FOREIGN KEY (form_id) REFERENCES forms(id)
);`

	createDrafts = `CREATE TABLE IF NOT EXISTS drafts (
    id TEXT PRIMARY KEY,
    form_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    data TEXT NOT NULL DEFAULT '{}',
    completion_percent REAL NOT NULL DEFAULT 0,
    expires_at TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (form_id) REFERENCES forms(id)
);`

	createAnalyticsEvents = `CREATE TABLE IF NOT EXISTS analytics_events (
    id TEXT PRIMARY KEY,
    event_type TEXT NOT NULL,
    entity_id TEXT,
    language TEXT,
    meta TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL
);`

	createSystemConfig = `CREATE TABLE IF NOT EXISTS system_config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createUsers,
	createCategories,
	createInstitutions,
	createForms,
	createFormFields,
	createDivisions,
	createContacts,
	createSubmissions,
	createDrafts,
	createAnalyticsEvents,
	createSystemConfig,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	`CREATE INDEX IF NOT EXISTS idx_forms_category ON forms(category_id);`,
	`CREATE INDEX IF NOT EXISTS idx_forms_institution ON forms(institution_id);`,
	`CREATE INDEX IF NOT EXISTS idx_forms_status ON forms(status);`,
	`CREATE INDEX IF NOT EXISTS idx_form_fields_form ON form_fields(form_id, order_index);`,
	`CREATE INDEX IF NOT EXISTS idx_institutions_parent ON institutions(parent_id);`,
	`CREATE INDEX IF NOT EXISTS idx_divisions_institution ON divisions(institution_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contacts_division ON contacts(division_id);`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_form ON submissions(form_id);`,
	`CREATE INDEX IF NOT EXISTS idx_drafts_user ON drafts(user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_type ON analytics_events(event_type);`,
}
