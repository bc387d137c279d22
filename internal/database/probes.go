package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"video-renditions/internal/probe"
)

// GetProbe returns the stored probe for digest. found is false when the
// digest has never been stored.
func (d *Database) GetProbe(ctx context.Context, digest string) (info probe.Info, found bool, err error) {
	start := time.Now()
	defer func() { recordQuery("get_probe", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx,
		"SELECT width, height, frames, duration FROM probes WHERE digest = ?",
		digest,
	).Scan(&info.Width, &info.Height, &info.Frames, &info.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return probe.Info{}, false, nil
	}
	if err != nil {
		return probe.Info{}, false, err
	}
	return info, true, nil
}

// PutProbe stores or replaces the probe for digest.
func (d *Database) PutProbe(ctx context.Context, digest string, info probe.Info) (err error) {
	start := time.Now()
	defer func() { recordQuery("put_probe", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
	INSERT INTO probes (digest, width, height, frames, duration, updated_at)
	VALUES (?, ?, ?, ?, ?, strftime('%s', 'now'))
	ON CONFLICT(digest) DO UPDATE SET
		width = excluded.width,
		height = excluded.height,
		frames = excluded.frames,
		duration = excluded.duration,
		updated_at = strftime('%s', 'now')
	`, digest, info.Width, info.Height, info.Frames, info.Duration)
	return err
}

// DeleteProbe removes the probe for digest, if any.
func (d *Database) DeleteProbe(ctx context.Context, digest string) (err error) {
	start := time.Now()
	defer func() { recordQuery("delete_probe", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, "DELETE FROM probes WHERE digest = ?", digest)
	return err
}

// CountProbes returns the number of stored probes.
func (d *Database) CountProbes(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { recordQuery("count_probes", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM probes").Scan(&n)
	return n, err
}

var _ probe.Store = (*Database)(nil)
