//go:build unix

package walker

import "golang.org/x/sys/unix"

// deviceOf returns the ID of the device containing path. Symlinks are followed
// only when follow is set.
func deviceOf(path string, follow bool) (uint64, error) {
	var st unix.Stat_t
	var err error
	if follow {
		err = unix.Stat(path, &st)
	} else {
		err = unix.Lstat(path, &st)
	}
	if err != nil {
		return 0, err
	}
	return uint64(st.Dev), nil
}
