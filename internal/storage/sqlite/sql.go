package sqlite

const insertRunSQL = `
INSERT INTO runs (
    id, created_at, sources, filter, config, samples, dropped, peaks, troughs,
    mean_high_interval, mean_low_interval,
    max_high_value, max_high_time, min_low_value, min_low_time,
    failures, statistics
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertSampleSQL = `
INSERT INTO samples (run_id, idx, time, raw, converted, filtered, label)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const runColumns = `
    id, created_at, sources, filter, samples, dropped, peaks, troughs,
    mean_high_interval, mean_low_interval,
    max_high_value, max_high_time, min_low_value, min_low_time,
    failures
`

const listRunsSQL = `SELECT` + runColumns + `FROM runs ORDER BY created_at DESC, id LIMIT ?`

const getRunSQL = `SELECT` + runColumns + `, config, statistics FROM runs WHERE id = ?`

const getSeriesSQL = `
SELECT time, raw, converted, filtered, label
FROM samples WHERE run_id = ? ORDER BY idx
`

const runExistsSQL = `SELECT COUNT(*) FROM runs WHERE id = ?`

const deleteRunSQL = `DELETE FROM runs WHERE id = ?`
