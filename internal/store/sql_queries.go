package store

const (
	createUser = `INSERT INTO users (username, password_hash)
    VALUES ($1, $2)
    RETURNING user_id, username, password_hash, totp_secret, created_at;`

	findUserByUsername = `SELECT user_id, username, password_hash, totp_secret, created_at
    FROM users
    WHERE username = $1;`

	findUserByID = `SELECT user_id, username, password_hash, totp_secret, created_at
    FROM users
    WHERE user_id = $1;`

	setTotpSecretIfUnset = `UPDATE users
    SET totp_secret = $1
    WHERE user_id = $2 AND totp_secret IS NULL;`

	setTotpSecretForce = `UPDATE users
    SET totp_secret = $1
    WHERE user_id = $2;`

	addDeniedToken = `INSERT INTO denied_tokens (fingerprint, expires_at)
    VALUES ($1, $2)
    ON CONFLICT (fingerprint) DO NOTHING;`

	containsDeniedToken = `SELECT EXISTS (
        SELECT 1 FROM denied_tokens WHERE fingerprint = $1
    );`

	purgeDeniedTokens = `DELETE FROM denied_tokens WHERE expires_at < $1;`
)
