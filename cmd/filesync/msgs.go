package main

// Message constants
const (
	MsgShort = "Deduplicate and merge file trees using content hashes"
	MsgLong  = `filesync consolidates files from one or more source directories into a
single destination, using content hashes to detect duplicates and to resolve
name collisions safely:

  - Files with the same relative path and the same content are copied once.
  - Files with the same relative path but different content are both kept:
    the incoming copy gets a numeric suffix (a.txt, a_1.txt, ...).
  - Existing destination files are never overwritten or deleted.

Unreadable roots and files are skipped and reported; only missing
configuration (no sources, no destination) aborts a run.`

	MsgExample = `  # Merge two photo libraries
  filesync --source ~/photos --source /mnt/backup/photos --destination /srv/photos

  # Spill the working set to SQLite for very large trees, keep it afterwards
  filesync -s /data/a -s /data/b -d /srv/merged --db files.db --keep-db

  # Verbose run
  filesync -v -s /data/a -d /srv/merged`
)
