package corefs

// joinPath builds a prefix-relative child path. prefix is "" for the mount
// root itself, matching Registry.Prefix's convention.
func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
