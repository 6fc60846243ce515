// Command tagctl inspects and edits the video tag catalog from the shell.
//
// Usage:
//
//	tagctl <command> [arguments]
//
// Commands:
//
//	ls [-sort name|size|date] [-desc] <dir>
//	        List video-bearing folders and video files in dir.
//	tag [-replace] <file> <tag,tag,...>
//	        Add tags to a file, or replace its tags with -replace.
//	untag <file>
//	        Remove every tag from a file.
//	show [-v] <file>
//	        Print the tags of a file, or with -v its whole catalog record.
//	du <dir>
//	        Print the video count, total size and latest time of a tree.
//	find <tag> [tag...]
//	        Print videos carrying every given tag.
//	top [n]
//	        Print the most used tags.
//	suggest <query> [n]
//	        Print tag names matching query, prefix matches first.
//	prune
//	        Remove catalog records whose files no longer exist.
//
// Output is an aligned table on a terminal and tab separated otherwise.
// The store is selected with the same DATABASE_DIR, STORE_BACKEND and
// CONFIG_FILE settings as the video-tagger server.
package main
