package communities

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgStore implements Store backed by PostgreSQL.
type pgStore struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

// NewPostgresStore constructs a PostgreSQL-backed community store.
func NewPostgresStore(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Store {
	return &pgStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates required tables if they do not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS communities (
  tenant_id text PRIMARY KEY,
  jive_url text,
  jive_community text,
  client_id text,
  client_secret text,
  oauth jsonb,
  version text,
  created_at timestamptz NOT NULL DEFAULT NOW(),
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS communities_jive_community_idx ON communities(jive_community);
CREATE INDEX IF NOT EXISTS communities_jive_url_idx ON communities(jive_url);
`)
	return err
}

func (p *pgStore) Save(ctx context.Context, c Community) (Community, error) {
	var oauthJSON []byte
	if c.OAuth != nil {
		oauthJSON, _ = json.Marshal(c.OAuth)
	}
	_, err := p.dbPool.Exec(ctx, `INSERT INTO communities(tenant_id,jive_url,jive_community,client_id,client_secret,oauth,version)
	  VALUES ($1,$2,$3,$4,$5,$6,$7)
	  ON CONFLICT (tenant_id) DO UPDATE SET
	    jive_url=EXCLUDED.jive_url,
	    jive_community=EXCLUDED.jive_community,
	    client_id=EXCLUDED.client_id,
	    client_secret=EXCLUDED.client_secret,
	    oauth=EXCLUDED.oauth,
	    version=EXCLUDED.version,
	    updated_at=NOW()`,
		c.TenantID, c.JiveURL, c.JiveCommunity, c.ClientID, c.ClientSecret, oauthJSON, c.Version)
	if err != nil {
		return Community{}, err
	}
	return c, nil
}

func (p *pgStore) Find(ctx context.Context, f Filter) ([]Community, error) {
	where := []string{}
	args := []any{}
	add := func(col, val string) {
		if val != "" {
			args = append(args, val)
			where = append(where, col+"=$"+strconv.Itoa(len(args)))
		}
	}
	add("tenant_id", f.TenantID)
	add("jive_url", f.JiveURL)
	add("jive_community", f.JiveCommunity)
	add("client_id", f.ClientID)
	q := `SELECT tenant_id,COALESCE(jive_url,''),COALESCE(jive_community,''),COALESCE(client_id,''),COALESCE(client_secret,''),oauth,COALESCE(version,'') FROM communities`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY tenant_id"
	rows, err := p.dbPool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Community
	for rows.Next() {
		var c Community
		var oauthJSON []byte
		if err := rows.Scan(&c.TenantID, &c.JiveURL, &c.JiveCommunity, &c.ClientID, &c.ClientSecret, &oauthJSON, &c.Version); err != nil {
			return nil, err
		}
		if len(oauthJSON) > 0 {
			var o OAuth
			if json.Unmarshal(oauthJSON, &o) == nil {
				c.OAuth = &o
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *pgStore) Remove(ctx context.Context, tenantID string) (bool, error) {
	tag, err := p.dbPool.Exec(ctx, `DELETE FROM communities WHERE tenant_id=$1`, tenantID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
