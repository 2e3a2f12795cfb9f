package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	contract TEXT NOT NULL,
	stake REAL NOT NULL,
	profit REAL NOT NULL,
	outcome TEXT NOT NULL,
	open_time DATETIME NOT NULL,
	close_time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	time DATETIME NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	consecutive_losses INTEGER NOT NULL,
	session_profit REAL NOT NULL,
	session_loss REAL NOT NULL,
	net REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_close_time ON trades(close_time);
CREATE INDEX IF NOT EXISTS idx_sessions_time ON sessions(time);
`
