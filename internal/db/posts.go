package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DistinctPostTypes returns every post_type value in the posts table, ordered by the
// lowest ID that carries it.
func (db *DB) DistinctPostTypes(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT post_type FROM `+db.table("posts")+` GROUP BY post_type ORDER BY MIN(ID)`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query post types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan post type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate post types: %w", err)
	}
	return types, nil
}

// ListPosts returns one page of posts matching q.
func (db *DB) ListPosts(ctx context.Context, q PostQuery) ([]Post, error) {
	if len(q.Types) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(q.Types)
	statuses, statusArgs := statusFilter()
	args = append(append(args, statusArgs...), q.Limit, q.Offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT ID, post_title, post_type, post_status, post_date, post_modified
		 FROM `+db.table("posts")+`
		 WHERE post_type IN (`+placeholders+`) AND post_status NOT IN (`+statuses+`)
		 ORDER BY `+q.orderClause()+`
		 LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Type, &p.Status, &p.Date, &p.Modified); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

// CountPostsByType returns the number of listable posts for each of types.
// Types without rows are absent from the map.
func (db *DB) CountPostsByType(ctx context.Context, types []string) (map[string]int, error) {
	counts := make(map[string]int, len(types))
	if len(types) == 0 {
		return counts, nil
	}
	placeholders, args := inClause(types)
	statuses, statusArgs := statusFilter()
	args = append(args, statusArgs...)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT post_type, COUNT(*) FROM `+db.table("posts")+`
		 WHERE post_type IN (`+placeholders+`) AND post_status NOT IN (`+statuses+`)
		 GROUP BY post_type`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t string
			n int
		)
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("failed to scan post count: %w", err)
		}
		counts[t] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate post counts: %w", err)
	}
	return counts, nil
}

// SetPostType changes the type of one post. It reports false when no post has that ID.
func (db *DB) SetPostType(ctx context.Context, id int64, postType string) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE `+db.table("posts")+` SET post_type = ? WHERE ID = ?`,
		postType, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to set type of post %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows for post %d: %w", id, err)
	}
	return n > 0, nil
}

// DeletePost removes a post permanently together with its meta, term relationships
// and comments. It reports false when no post has that ID.
func (db *DB) DeletePost(ctx context.Context, id int64) (deleted bool, err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin delete of post %d: %w", id, err)
	}
	defer func() {
		if err != nil || !deleted {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM `+db.table("posts")+` WHERE ID = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete post %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows for post %d: %w", id, err)
	}
	if n == 0 {
		return false, nil
	}

	cleanup := []string{
		`DELETE cm FROM ` + db.table("commentmeta") + ` cm
		 JOIN ` + db.table("comments") + ` c ON c.comment_ID = cm.comment_id
		 WHERE c.comment_post_ID = ?`,
		`DELETE FROM ` + db.table("comments") + ` WHERE comment_post_ID = ?`,
		`DELETE FROM ` + db.table("postmeta") + ` WHERE post_id = ?`,
		`DELETE FROM ` + db.table("term_relationships") + ` WHERE object_id = ?`,
	}
	for _, stmt := range cleanup {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return false, fmt.Errorf("failed to clean up after post %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete of post %d: %w", id, err)
	}
	return true, nil
}
