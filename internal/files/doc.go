// Package files locates report inputs on disk and stores uploaded files.
//
// Discovery finds session exports under a directory laid out as
// DIR/<Cell Manager>/*.csv|*.txt, and schedule workbooks (.xlsx, .xlsm).
// Office lock files (~$name) and hidden files are ignored.
//
// Manager keeps HTTP uploads under <root>/<workspace>/<group>/ until the
// workspace is deleted.
package files
