/*
Package filesystem provides the video tagger's view of the disk: path
normalization for catalog keys, and stat/readdir/exists operations with
automatic retry for NFS stale file handle errors.

# Path Normalization

Normalize produces the single comparable form used as the catalog's primary
key. Backslashes become forward slashes, redundant "." and ".." segments and
repeated separators are removed, and relative paths are made absolute against
the working directory. Symlinks are not resolved and case is preserved.

	filesystem.Normalize(`C:\videos\.\a.mp4`) // "C:/videos/a.mp4"
	filesystem.Normalize("/v//x/../a.mp4")     // "/v/a.mp4"

Normalize is idempotent.

# Filesystem Access

FS wraps an afero.Fs so the same code runs against the real disk (NewOS) and
against an in-memory tree in tests (New(afero.NewMemMapFs(), ...)):

	fsys := filesystem.NewOS(filesystem.DefaultRetryConfig())
	info, err := fsys.Stat("/nfs/videos/a.mp4")
	entries, err := fsys.ReadDir("/nfs/videos")
	if fsys.Exists("/nfs/videos/a.mp4") { ... }

# Retry Behavior

Only ESTALE triggers a retry, with exponential backoff (defaults: 3 retries,
50ms initial, 500ms cap). All other errors are returned immediately.

# Volumes

VolumeResolver maps paths to configured media roots by longest prefix. It
labels filesystem metrics and lets the HTTP front end refuse paths outside
the configured roots.
*/
package filesystem
