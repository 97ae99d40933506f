package fs

// Changed reports whether a file looks different from an earlier snapshot.
// A replaced file (new inode), a newer mtime or a different size all count.
func Changed(orig, now FileInfo) bool {
	if now.Inode != 0 && orig.Inode != 0 && now.Inode != orig.Inode {
		return true
	}
	if now.MTime.After(orig.MTime) {
		return true
	}
	return now.Size != orig.Size
}
