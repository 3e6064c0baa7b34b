// Package filehandler provides queued handlers that write formatted
// records to files.
//
//   - FileHandler appends to a single file.
//   - A rotating FileHandler (NewRotatingFileHandler) rolls the file over
//     to numbered backups (path.1, path.2, ...) once the next write would
//     exceed MaxBytes.
//   - ArchiveHandler delegates file management to lumberjack for
//     megabyte-sized rollover with age-based cleanup and compression.
//
// All file I/O, including rotation, happens on the handler's worker
// goroutine. Producers never wait on the disk.
package filehandler
