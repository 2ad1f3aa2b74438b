package mysql

import "context"

// RunMigrations creates the schema if it does not exist yet.
func (mdb *MySQLDB) RunMigrations(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS person (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(191) NOT NULL,
			email VARCHAR(191) NULL,
			password_hash VARCHAR(255) NOT NULL DEFAULT '',
			display_name VARCHAR(191) NOT NULL DEFAULT '',
			google_id VARCHAR(191) NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY username (username),
			UNIQUE KEY email (email),
			UNIQUE KEY google_id (google_id)
		)`,
		`CREATE TABLE IF NOT EXISTS post (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			author_id BIGINT NOT NULL,
			title VARCHAR(512) NOT NULL,
			content MEDIUMTEXT NOT NULL,
			tags JSON NULL,
			image VARCHAR(512) NULL,
			views BIGINT NOT NULL DEFAULT 0,
			is_edited BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NULL,
			KEY idx_post_created (created_at),
			KEY idx_post_views (views),
			FOREIGN KEY (author_id) REFERENCES person(id)
		)`,
		`CREATE TABLE IF NOT EXISTS comment (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			post_id BIGINT NOT NULL,
			author_id BIGINT NOT NULL,
			content TEXT NOT NULL,
			parent_comment_id BIGINT NULL,
			reply_to_user_id BIGINT NULL,
			is_edited BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NULL,
			KEY idx_comment_post (post_id),
			KEY idx_comment_parent (parent_comment_id),
			FOREIGN KEY (post_id) REFERENCES post(id),
			FOREIGN KEY (author_id) REFERENCES person(id)
		)`,
		`CREATE TABLE IF NOT EXISTS discussion (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			author_id BIGINT NOT NULL,
			title VARCHAR(512) NOT NULL,
			content MEDIUMTEXT NOT NULL,
			is_edited BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NULL,
			KEY idx_discussion_created (created_at),
			FOREIGN KEY (author_id) REFERENCES person(id)
		)`,
		`CREATE TABLE IF NOT EXISTS discussion_comment (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			discussion_id BIGINT NOT NULL,
			author_id BIGINT NOT NULL,
			content TEXT NOT NULL,
			is_edited BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NULL,
			KEY idx_disc_comment_discussion (discussion_id),
			FOREIGN KEY (discussion_id) REFERENCES discussion(id),
			FOREIGN KEY (author_id) REFERENCES person(id)
		)`,
	}

	for _, query := range queries {
		if _, err := mdb.sess.SQL().ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}
