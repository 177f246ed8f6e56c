package mysql

const propertyColumns = `
  listing_id, slug, title, description, city, country, address,
  latitude, longitude, bedrooms, bathrooms, guests, base_price,
  images, amenities, property_type, check_in_time, check_out_time, house_rules,
  created_at, last_synced`

const insertPropertySQL = `
INSERT INTO properties (` + propertyColumns + `)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// created_at is written once, on insert.
const updatePropertySQL = `
UPDATE properties SET
  slug           = ?,
  title          = ?,
  description    = ?,
  city           = ?,
  country        = ?,
  address        = ?,
  latitude       = ?,
  longitude      = ?,
  bedrooms       = ?,
  bathrooms      = ?,
  guests         = ?,
  base_price     = ?,
  images         = ?,
  amenities      = ?,
  property_type  = ?,
  check_in_time  = ?,
  check_out_time = ?,
  house_rules    = ?,
  last_synced    = ?
WHERE listing_id = ?
`

const upsertAmenitySQL = `
INSERT INTO amenities (amenity_id, amenity_name, is_active)
VALUES (?, ?, 1)
ON DUPLICATE KEY UPDATE
  amenity_name = VALUES(amenity_name)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const selectPropertySQL = `SELECT` + propertyColumns + `
FROM properties
`

const findByListingIDSQL = selectPropertySQL + `WHERE listing_id = ?`

const getBySlugSQL = selectPropertySQL + `WHERE slug = ?`

const slugExistsSQL = `SELECT 1 FROM properties WHERE slug = ? AND listing_id <> ? LIMIT 1`

const countPropertiesSQL = `SELECT COUNT(*) FROM properties`

const listCitiesSQL = `SELECT DISTINCT city FROM properties WHERE city <> '' ORDER BY city`

const listAmenitiesSQL = `SELECT amenity_id, amenity_name, is_active FROM amenities`

const deactivateAmenitiesSQL = `UPDATE amenities SET is_active = 0`
