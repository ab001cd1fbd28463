package model

// Match represents a single query hit inside a file.
type Match struct {
	File   Path
	Line   int // 1-based line number
	Column int // 1-based byte offset of the hit within the line
	Text   string
}
