package postgres

import "context"

const schema = `
create table if not exists users (
	id                text primary key,
	email             text not null unique,
	first_name        text not null default '',
	last_name         text not null default '',
	profile_image_url text not null default '',
	external_id       text not null default '',
	is_admin          boolean not null default false,
	created_at        timestamptz not null default now(),
	updated_at        timestamptz not null default now()
);

create unique index if not exists users_external_id_idx
	on users (external_id) where external_id <> '';
`

// EnsureSchema creates the users table when it does not exist yet.
func (d *Directory) EnsureSchema(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, schema)
	return err
}
