package mysql

const insertExperienceSQL = `
INSERT INTO experiences
  (title, caption, slug, category, region, prefecture, price, lat, lon,
   phone, website, address, schedule, rating, review_count, approved,
   general_tags, budget_tags, category_tags, place_id, osm_id, image_url)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Shared SELECT column list for catalog reads and dedupe lookups.
const selectExperienceCols = `
SELECT
  id, title, slug, category, region, prefecture, price,
  lat, lon, rating, review_count, approved, place_id, osm_id
FROM experiences
`

const getExperienceSQL = selectExperienceCols + `WHERE id = ?`

const countByCategorySQL = `SELECT COUNT(*) FROM experiences WHERE category = ?`

const countByTitleSQL = `SELECT COUNT(*) FROM experiences WHERE title = ? AND prefecture = ? AND category = ?`
