package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

const (
	insertContactSQL = `
INSERT INTO contacts (
                      callsign,
                      grid,
                      contact_time,
                      frequency,
                      mode,
                      rst_sent,
                      rst_rcvd,
                      name,
                      qth,
                      notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	updateContactSQL = `
UPDATE contacts
SET
    callsign = ?,
    grid = ?,
    contact_time = ?,
    frequency = ?,
    mode = ?,
    rst_sent = ?,
    rst_rcvd = ?,
    name = ?,
    qth = ?,
    notes = ?
WHERE
    id = ?`

	selectContactSQL = `
SELECT
    id,
    callsign,
    grid,
    contact_time,
    frequency,
    mode,
    rst_sent,
    rst_rcvd,
    name,
    qth,
    notes
FROM contacts
WHERE
    id = ?`

	selectContactsSQL = `
SELECT
    id,
    callsign,
    grid,
    contact_time,
    frequency,
    mode,
    rst_sent,
    rst_rcvd,
    name,
    qth,
    notes
FROM contacts`

	countContactsSQL = `
SELECT COUNT(*) FROM contacts`

	deleteContactSQL = `
DELETE FROM contacts
WHERE
    id = ?`
)
