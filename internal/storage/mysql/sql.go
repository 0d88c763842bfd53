package mysql

const insertReportSQL = `
INSERT INTO analysis_reports
  (id, source, total_reviews, negative_reviews, result, created_at)
VALUES
  (?, ?, ?, ?, ?, ?)
`

const getReportSQL = `
SELECT id, source, result, created_at
FROM analysis_reports
WHERE id = ?
`

// Newest first; matches idx_reports_created (created_at, id).
const listReportsSQL = `
SELECT id, source, result, created_at
FROM analysis_reports
ORDER BY created_at DESC, id DESC
LIMIT ?
`
