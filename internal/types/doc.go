/*
Package types defines the records exchanged with the tax backend.

# Tax Records

TaxRecord:
  - One customer tax line from GET /taxes
  - Known fields: id, entity, gender, country, createdAt, request_date
  - Every other field is kept verbatim in Extra and written back on update
  - Numeric ids are accepted and kept as their literal text

TaxUpdate:
  - The fields the edit form changes (entity, country)
  - Applied to a record copy with TaxRecord.Apply before PUT /taxes/{id}

# Reference Data

Country:
  - Entry of GET /countries
  - Name is the match key for filtering and the edit form's options

# History

EditEntry:
  - One successful save as stored in the local edit history
  - Before and after snapshots as JSON
*/
package types
